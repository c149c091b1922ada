package business

// ID tipe untuk Business, di-assign oleh server
type ID int64

// PlaceholderMonthlyRevenue dikirim di setiap create/update.
// Form tidak punya input revenue, API tetap mewajibkan field-nya.
const PlaceholderMonthlyRevenue int64 = 1200000

// Business record hasil submit + analisa AI dari remote API
type Business struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Story      string `json:"story"`
	AIAnalysis string `json:"aiAnalysis"`
	Tags       string `json:"tags"`
	CreatedAt  string `json:"createdAt"`
}

// CleanTags returns the normalized tags of the record.
func (b Business) CleanTags() []string {
	return CleanTags(b.Tags)
}

// Payload body untuk POST/PUT
type Payload struct {
	Name           string `json:"name"`
	Story          string `json:"story"`
	MonthlyRevenue int64  `json:"monthlyRevenue"`
}

// NewPayload builds the request body with the placeholder revenue.
func NewPayload(name, story string) Payload {
	return Payload{Name: name, Story: story, MonthlyRevenue: PlaceholderMonthlyRevenue}
}
