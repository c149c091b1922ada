package httpserver

import (
	"strings"
	"time"

	"github.com/bryanwahyu/bizdata-console/internal/application/board"
	"github.com/bryanwahyu/bizdata-console/internal/domain/business"
)

const (
	titleIdle        = "BizData AI Analysis"
	titleEditing     = "Edit record"
	labelSubmit      = "Run analysis"
	labelUpdate      = "Update and re-analyze"
	labelSending     = "Sending..."
	analysisPending  = "Analyzing..."
	createdAtMissing = "-"
	createdAtLayout  = "2006/1/2 15:04:05"
)

// pageView is everything the page template and /api/view need.
// It is derived from the state on every request.
type pageView struct {
	Title       string         `json:"title"`
	SubmitLabel string         `json:"submitLabel"`
	Editing     bool           `json:"editing"`
	EditingID   int64          `json:"editingId,omitempty"`
	Name        string         `json:"name"`
	Story       string         `json:"story"`
	Loading     bool           `json:"loading"`
	Running     string         `json:"running,omitempty"`
	ActiveTag   string         `json:"activeTag,omitempty"`
	Cards       []cardView     `json:"records"`
	Notices     []board.Notice `json:"notices"`
}

type cardView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Story     string    `json:"story"`
	Analysis  string    `json:"aiAnalysis"`
	Tags      []tagView `json:"tags"`
	CreatedAt string    `json:"createdAt"`
}

type tagView struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func buildView(st board.State, notices []board.Notice) pageView {
	v := pageView{
		Title:       titleIdle,
		SubmitLabel: labelSubmit,
		Name:        st.Name,
		Story:       st.Story,
		Loading:     st.Loading,
		ActiveTag:   st.ActiveTag,
		Notices:     notices,
	}
	if id, ok := st.Editing(); ok {
		v.Editing = true
		v.EditingID = int64(id)
		v.Title = titleEditing
		v.SubmitLabel = labelUpdate
	}
	if st.Loading {
		v.SubmitLabel = labelSending
		v.Running = board.MsgSubmitRunning
	}
	if v.Notices == nil {
		v.Notices = []board.Notice{}
	}

	visible := st.Visible()
	v.Cards = make([]cardView, 0, len(visible))
	for _, b := range visible {
		v.Cards = append(v.Cards, buildCard(b, st.ActiveTag))
	}
	return v
}

func buildCard(b business.Business, activeTag string) cardView {
	c := cardView{
		ID:        int64(b.ID),
		Name:      b.Name,
		Story:     strings.TrimSpace(b.Story),
		Analysis:  b.AIAnalysis,
		CreatedAt: formatCreatedAt(b.CreatedAt),
		Tags:      []tagView{},
	}
	if c.Analysis == "" {
		c.Analysis = analysisPending
	}
	for _, t := range b.CleanTags() {
		c.Tags = append(c.Tags, tagView{Name: t, Active: t == activeTag})
	}
	return c
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatCreatedAt renders the server timestamp in local time. Values
// that do not parse are shown as received.
func formatCreatedAt(raw string) string {
	if raw == "" {
		return createdAtMissing
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.In(time.Local).Format(createdAtLayout)
		}
	}
	return raw
}
