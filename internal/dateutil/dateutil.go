// Package dateutil formats issue dates from user-friendly patterns,
// including Japanese era (wareki) years.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when "auto" is specified without a format.
// It matches the value of an HTML date input.
const DefaultDateFormat = "YYYY-MM-DD"

// Presets provides named shortcuts for common issue date formats.
var Presets = map[string]string{
	"iso":    "YYYY-MM-DD",
	"ja":     "YYYY年M月D日",
	"wareki": "GGEE年M月D日",
	"slash":  "YYYY/MM/DD",
	"long":   "MMMM D, YYYY",
}

// era is a Japanese imperial era starting on a given day (JST).
type era struct {
	name  string
	start time.Time
}

var jst = time.FixedZone("JST", 9*60*60)

// eras is ordered newest first.
var eras = []era{
	{"令和", time.Date(2019, 5, 1, 0, 0, 0, 0, jst)},
	{"平成", time.Date(1989, 1, 8, 0, 0, 0, 0, jst)},
	{"昭和", time.Date(1926, 12, 25, 0, 0, 0, 0, jst)},
}

// token renders one pattern element of t.
type token struct {
	text   string
	render func(t time.Time) string
}

// tokens is ordered by length descending for greedy matching.
var tokens = []token{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"YY", func(t time.Time) string { return fmt.Sprintf("%02d", t.Year()%100) }},
	{"GG", func(t time.Time) string { name, _ := eraOf(t); return name }},
	{"EE", func(t time.Time) string { _, year := eraOf(t); return eraYear(year) }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
}

// eraOf returns the era name and era year for t's calendar date. Dates
// before Showa fall back to the Gregorian year with an empty era name.
func eraOf(t time.Time) (string, int) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, jst)
	for _, e := range eras {
		if !day.Before(e.start) {
			return e.name, t.Year() - e.start.Year() + 1
		}
	}
	return "", t.Year()
}

// eraYear renders the first year of an era as 元.
func eraYear(year int) string {
	if year == 1 {
		return "元"
	}
	return strconv.Itoa(year)
}

// Format renders t using a pattern.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, GG (era name), EE (era year).
// Use brackets to escape literal text: [Date] preserves "Date" literally.
// Any non-token characters outside brackets are preserved as literals.
// Returns ErrInvalidDateFormat if the format is empty, too long, or has unclosed brackets.
func Format(format string, t time.Time) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, tok := range tokens {
			if strings.HasPrefix(format[i:], tok.text) {
				result.WriteString(tok.render(t))
				i += len(tok.text)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// ResolveDate handles "auto" and "auto:FORMAT" syntax for date values.
//   - "auto" → current date in YYYY-MM-DD format
//   - "auto:FORMAT" → current date in custom format (e.g., "auto:YYYY年M月D日")
//   - "auto:preset" → current date using a named preset (iso, ja, wareki, slash, long)
//   - any other value → returned unchanged
//
// The time parameter allows injecting a fixed time for testing.
func ResolveDate(value string, t time.Time) (string, error) {
	lower := strings.ToLower(value)

	if !strings.HasPrefix(lower, "auto") {
		return value, nil
	}
	if lower == "auto" {
		return Format(DefaultDateFormat, t)
	}
	if !strings.HasPrefix(lower, "auto:") {
		return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}

	// Preserve original case for format tokens
	formatPart := value[len("auto:"):]
	if formatPart == "" {
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	}
	if preset, ok := Presets[strings.ToLower(formatPart)]; ok {
		formatPart = preset
	}

	return Format(formatPart, t)
}
