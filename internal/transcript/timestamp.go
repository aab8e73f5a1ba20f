package transcript

import (
	"strconv"
	"strings"
)

// ParseTimestamp converts a provider timestamp string into seconds. It is
// best-effort and never fails; unrecognized input yields 0.
//
// Accepted shapes: "H:MM:SS.mmm", "MM:SS.mmm", and the transcription
// provider's quirk "MM:SS:mmm" where milliseconds arrive behind a colon
// instead of a period. With exactly three fields, a last field that is >= 60
// or carries no decimal point is read as milliseconds; anything else is read
// as (hours, minutes, seconds). The >= 60 threshold is load-bearing: it is
// the only way to tell "01:45:558" (1m45.558s) apart from a real
// hour-minute-second stamp.
func ParseTimestamp(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	fields := strings.Split(raw, ":")
	switch len(fields) {
	case 2:
		return parseField(fields[0])*60 + parseField(fields[1])
	case 3:
		last := strings.TrimSpace(fields[2])
		value := parseField(last)
		if value >= 60 || !strings.Contains(last, ".") {
			// Quirk form: minutes, seconds, milliseconds.
			return parseField(fields[0])*60 + parseField(fields[1]) + value/1000
		}
		return parseField(fields[0])*3600 + parseField(fields[1])*60 + value
	default:
		return 0
	}
}

func parseField(field string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
