package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrInvalidDateFormat rejects a pattern that cannot become a layout.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds pattern length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when a template passes an empty pattern.
const DefaultDateFormat = "YYYY-MM-DD"

// DatePresets names common patterns. Lookup is case-insensitive.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"short":    "MMM D",
	"full":     "dddd, MMMM D, YYYY",
}

// runLayouts maps a letter and its repeat count to a Go layout element.
var runLayouts = map[byte]map[int]string{
	'Y': {2: "06", 4: "2006"},
	'M': {1: "1", 2: "01", 3: "Jan", 4: "January"},
	'D': {1: "2", 2: "02"},
	'd': {3: "Mon", 4: "Monday"},
}

// layouts caches converted patterns; templates format every post's date.
var layouts sync.Map

// Layout converts a pattern to a Go time layout.
//
// A run of one pattern letter is a single element: YYYY and YY are the year,
// M through MMMM the month from number to full name, D and DD the day of the
// month, ddd and dddd the weekday. Text in square brackets is copied as is,
// so "[Posted] YYYY" keeps the word Posted. Other characters pass through.
func Layout(pattern string) (string, error) {
	if v, ok := layouts.Load(pattern); ok {
		return v.(string), nil
	}
	layout, err := compile(pattern)
	if err != nil {
		return "", err
	}
	layouts.Store(pattern, layout)
	return layout, nil
}

func compile(pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("%w: empty pattern", ErrInvalidDateFormat)
	}
	if len(pattern) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]

		if c == '[' {
			end := strings.IndexByte(pattern[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(pattern[i+1 : i+end])
			i += end + 1
			continue
		}

		elems, ok := runLayouts[c]
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}
		n := 1
		for i+n < len(pattern) && pattern[i+n] == c {
			n++
		}
		elem, ok := elems[n]
		if !ok {
			return "", fmt.Errorf("%w: %q is not a date element", ErrInvalidDateFormat, pattern[i:i+n])
		}
		b.WriteString(elem)
		i += n
	}
	return b.String(), nil
}

// Format renders t with a pattern or preset name. An empty pattern means
// DefaultDateFormat.
func Format(t time.Time, pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultDateFormat
	}
	if preset, ok := DatePresets[strings.ToLower(pattern)]; ok {
		pattern = preset
	}
	layout, err := Layout(pattern)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}
