package transcript

// Translation is one translated row keyed by segment identity.
type Translation struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ApplyTranslations merges translated rows into the segment list by ID.
// The row count must equal the segment count: a provider that merged or
// dropped lines would desynchronize audio timing, so on any mismatch the
// segments are returned unchanged and the untranslated text is kept for
// every segment. Never partial.
func ApplyTranslations(segments []Segment, translations []Translation) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	if len(translations) != len(segments) {
		return out
	}
	byID := make(map[int]string, len(translations))
	for _, row := range translations {
		byID[row.ID] = row.Text
	}
	for i := range out {
		if text, ok := byID[out[i].ID]; ok && text != "" {
			out[i].Text = text
		}
	}
	return out
}
