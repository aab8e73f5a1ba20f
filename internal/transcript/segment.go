package transcript

// RawSegment is one transcription row exactly as the provider returned it.
type RawSegment struct {
	ID    int    `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// Segment is one timed unit of speech. Times are derived once at ingestion
// and are immutable afterwards; only Text changes (translation, user edits).
type Segment struct {
	ID           int     `json:"id"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	StartTime    float64 `json:"startTime"`
	EndTime      float64 `json:"endTime"`
	TextOriginal string  `json:"textOriginal"`
	Text         string  `json:"text"`
}

// SlotSeconds returns the duration of the segment's time slot.
func (s Segment) SlotSeconds() float64 {
	return s.EndTime - s.StartTime
}

// Normalize converts provider rows into segments with parsed times. Rows
// whose end does not leave at least minSlotSeconds after the start are
// clamped so every segment owns a usable slot. Duplicate IDs are rewritten
// to the first free ID so identity stays unique within the run.
func Normalize(raw []RawSegment, minSlotSeconds float64) []Segment {
	if minSlotSeconds <= 0 {
		minSlotSeconds = 0.5
	}
	segments := make([]Segment, 0, len(raw))
	seen := make(map[int]bool, len(raw))
	nextID := 1
	for _, row := range raw {
		id := row.ID
		for id <= 0 || seen[id] {
			id = nextID
			nextID++
		}
		seen[id] = true
		if id >= nextID {
			nextID = id + 1
		}

		start := ParseTimestamp(row.Start)
		end := ParseTimestamp(row.End)
		if end < start+minSlotSeconds {
			end = start + minSlotSeconds
		}
		segments = append(segments, Segment{
			ID:           id,
			Start:        row.Start,
			End:          row.End,
			StartTime:    start,
			EndTime:      end,
			TextOriginal: row.Text,
			Text:         row.Text,
		})
	}
	return segments
}
