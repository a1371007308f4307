package table

import (
	"strings"
	"time"
)

// dateLayouts covers the serializations observed across the supported
// sites. All parse to a calendar date; any time component is dropped.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"2006年01月02日",
	"2006-01-02 15:04:05",
	"06-01-02",
}

// ParseDate coerces a cell string to a calendar date normalized to UTC
// midnight, so that the same date serialized differently across sources
// compares equal.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return Normalize(t), true
	}
	return time.Time{}, false
}

// Normalize strips the time component and pins the location to UTC.
// Merge keys must be byte-comparable after this.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
