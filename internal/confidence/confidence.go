// Package confidence classifies extraction-field confidence scores into
// display bands and decides whether a flyer qualifies for automatic image
// generation. All functions are pure; they are safe to call from any
// goroutine.
package confidence

import (
	"math"
	"strconv"
	"strings"
)

// Band is the tri-state quality classification of an extracted field.
type Band int

const (
	// None means no band applies (field not shown).
	None Band = iota
	Red
	Yellow
	Green
)

func (b Band) String() string {
	switch b {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return "none"
	}
}

// gateFields is the fixed set of extraction fields checked by the
// auto-generation gate. Fields outside this set never influence the gate.
var gateFields = []string{
	"event_date_time",
	"location_town_city",
	"event_title",
	"performers_djs_soundsystems",
	"venue_name",
}

// GateFields returns the field keys inspected by ShouldAutoGenerate.
func GateFields() []string {
	out := make([]string, len(gateFields))
	copy(out, gateFields)
	return out
}

// Normalize parses a raw confidence string into a 0..1 fraction. The backend
// emits either fractions ("0.9") or percentages ("90"); values above 1.0 are
// treated as percentages and divided by 100. The second return value is false
// when raw is empty or unparsable. Normalize never returns 0 for invalid
// input with ok=true.
func Normalize(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > 1.0 {
		f /= 100
	}
	return f, true
}

// Classify maps a field value and its raw confidence to a band.
//
// A missing value is always Red regardless of confidence: an empty field is
// flagged for review no matter how sure the extractor claims to be. Missing
// or unparsable confidence on a populated field is Yellow, never Green —
// unknown confidence defaults to "needs review", not "trusted".
func Classify(value, confidenceRaw string) Band {
	if strings.TrimSpace(value) == "" {
		return Red
	}
	n, ok := Normalize(confidenceRaw)
	if !ok {
		return Yellow
	}
	switch {
	case n < 0.5:
		return Red
	case n < 0.9:
		return Yellow
	default:
		return Green
	}
}

// FormatPercent renders a raw confidence as a whole percentage ("85%"),
// rounding half away from zero. Unparsable input yields "N/A".
func FormatPercent(raw string) string {
	n, ok := Normalize(raw)
	if !ok {
		return "N/A"
	}
	return strconv.Itoa(int(math.Round(n*100))) + "%"
}

// ShouldAutoGenerate reports whether every populated gate field carries
// confidence strictly above 0.90. A nil confidence map always fails the gate:
// without confidence data no automatic action is taken. Fields with no value
// are skipped; a populated field with a missing, unparsable, or insufficient
// confidence entry fails the gate immediately.
//
// The gate requires strictly > 0.90 while Classify treats exactly 0.9 as
// Green; both cutoffs are deliberate and pinned by tests.
func ShouldAutoGenerate(conf map[string]string, values map[string]string) bool {
	if conf == nil {
		return false
	}
	for _, field := range gateFields {
		if strings.TrimSpace(values[field]) == "" {
			continue
		}
		raw, ok := conf[field]
		if !ok {
			return false
		}
		n, ok := Normalize(raw)
		if !ok || n <= 0.90 {
			return false
		}
	}
	return true
}
