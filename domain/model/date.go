package model

import (
	"regexp"
	"strings"
	"time"
)

// patternKind tells how a datetime pattern takes part in inference and parsing.
type patternKind int

const (
	// patternDate values carry a calendar date
	patternDate patternKind = iota
	// patternTimeOnly values look date-like but carry no calendar date
	patternTimeOnly
	// patternYearOnly values parse as a date but are inferred as integers
	patternYearOnly
)

// Common datetime patterns to detect
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
	kind    patternKind
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
		patternDate,
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04"},
		patternDate,
	},
	// ISO8601 date and time with space, optionally zoned
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})$`),
		[]string{"2006-01-02 15:04:05Z07:00", "2006-01-02 15:04:05Z0700"},
		patternDate,
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04"},
		patternDate,
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
		[]string{"2006-01-02", "2006-1-2"},
		patternDate,
	},
	{
		regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}$`),
		[]string{"2006/01/02", "2006/1/2"},
		patternDate,
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "01/02/2006 15:04:05"},
		patternDate,
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "01/02/2006"},
		patternDate,
	},
	// European formats
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4} \d{1,2}:\d{2}:\d{2}$`),
		[]string{"2.1.2006 15:04:05", "02.01.2006 15:04:05"},
		patternDate,
	},
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		[]string{"2.1.2006", "02.01.2006"},
		patternDate,
	},
	// Month names, e.g. "March 1, 2015", "Mar 1, 2015", "1 March 2015", "March 2015"
	{
		regexp.MustCompile(`^[A-Za-z]{3,9}\.? \d{1,2}, \d{4}$`),
		[]string{"January 2, 2006", "Jan 2, 2006", "Jan. 2, 2006"},
		patternDate,
	},
	{
		regexp.MustCompile(`^\d{1,2} [A-Za-z]{3,9} \d{4}$`),
		[]string{"2 January 2006", "2 Jan 2006"},
		patternDate,
	},
	{
		regexp.MustCompile(`^[A-Za-z]{3,9} \d{4}$`),
		[]string{"January 2006", "Jan 2006"},
		patternDate,
	},
	// Bare year
	{
		regexp.MustCompile(`^\d{4}$`),
		[]string{"2006"},
		patternYearOnly,
	},
	// Time only
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"15:04:05", "3:04:05"},
		patternTimeOnly,
	},
	{
		regexp.MustCompile(`^\d{1,2}:\d{2}$`),
		[]string{"15:04", "3:04"},
		patternTimeOnly,
	},
}

// matchDatetime returns the parsed time and the kind of the first pattern
// whose formats accept value.
func matchDatetime(value string) (time.Time, patternKind, bool) {
	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		// Try each format for this pattern
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, dp.kind, true
			}
		}
	}
	return time.Time{}, patternDate, false
}

// isDatetime checks if a string value looks like a date or time for inference.
// Bare years are left to the numeric rules.
func isDatetime(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	_, kind, ok := matchDatetime(value)
	return ok && kind != patternYearOnly
}

// ParseDate coerces text into a calendar date. Zoned values are converted to
// UTC. It reports false for text that is not a calendar date, including
// time-only values.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" || IsMissingMarker(value) {
		return time.Time{}, false
	}
	t, kind, ok := matchDatetime(value)
	if !ok || kind == patternTimeOnly {
		return time.Time{}, false
	}
	return t.UTC(), true
}
