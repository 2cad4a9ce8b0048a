package attrs

import (
	"strconv"
	"strings"
)

// CleanNumber extracts the numeric value embedded in a messy price string by
// stripping every rune that is not a digit or decimal point before parsing.
// "$1,234.50" -> 1234.50. Returns false when nothing parseable remains or
// the result is negative.
func CleanNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

// LeadingNumber parses the numeric prefix of a measurement string, ignoring
// trailing unit text: "5g" -> 5, "1.2 ct" -> 1.2, "0.50 Carat" -> 0.5.
// Returns false when the string does not start with a number.
func LeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
