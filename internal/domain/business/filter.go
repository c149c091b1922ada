package business

// Filter returns the records tagged with activeTag.
// An empty activeTag means no filter and the input slice is returned as is.
func Filter(records []Business, activeTag string) []Business {
	if activeTag == "" {
		return records
	}

	out := make([]Business, 0, len(records))
	for _, r := range records {
		if HasTag(r.Tags, activeTag) {
			out = append(out, r)
		}
	}
	return out
}
