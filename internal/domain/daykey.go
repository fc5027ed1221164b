package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DayKeyLayout is the fixed ISO 8601 date form used for day partitions.
const DayKeyLayout = "2006-01-02"

var dayKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DayKeyOf returns the UTC calendar date of t.
func DayKeyOf(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDayKey resolves a caller-supplied day parameter to a canonical
// YYYY-MM-DD string. Full timestamps are reduced to their UTC calendar date;
// bare YYYY-MM-DD values are accepted verbatim; anything else is rejected.
func NormalizeDayKey(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ValidationError{Reason: "a valid day parameter is required"}
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return DayKeyOf(parsed), nil
		}
	}

	if dayKeyPattern.MatchString(trimmed) {
		return trimmed, nil
	}

	return "", ValidationError{Reason: fmt.Sprintf("unrecognized day value %q", trimmed)}
}
