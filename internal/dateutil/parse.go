package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate rejects a frontmatter value that is not a calendar date.
var ErrInvalidDate = errors.New("invalid date")

// sourceLayouts lists the date shapes accepted in frontmatter.
var sourceLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate reads a frontmatter date and keeps only its calendar day, as
// UTC midnight. "2023-06-01T23:30:00-08:00" stays June 1st.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if isoPrefix(value) {
		for _, layout := range sourceLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return Day(t), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// LooksLikeDate reports whether a frontmatter string should be read as a date.
func LooksLikeDate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}

// isoPrefix checks for a leading "dddd-dd-dd".
func isoPrefix(s string) bool {
	if len(s) < len("2006-01-02") {
		return false
	}
	for i := range 10 {
		switch i {
		case 4, 7:
			if s[i] != '-' {
				return false
			}
		default:
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		}
	}
	return true
}

// Day returns the calendar day of t, in t's location, as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
