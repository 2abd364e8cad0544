package evernote

import (
	"strings"
	"time"
	"unicode"
)

const (
	enexTimeLayout      = "20060102T150405Z"
	enexTimeLayoutLocal = "20060102T150405"
)

// ParseTime parses an ENEX timestamp (compact ISO-8601, e.g.
// 20231101T120000Z). The trailing Z is optional in some exports.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(enexTimeLayout, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(enexTimeLayoutLocal, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// ParseTaskTime parses the packed fixed-width date-time carried by task
// records. Exports prefix the value with a single marker rune in some
// versions; one leading non-digit is tolerated.
func ParseTaskTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	runes := []rune(s)
	if !unicode.IsDigit(runes[0]) {
		s = string(runes[1:])
	}
	return ParseTime(s)
}

// FormatDay renders a timestamp as the day-precision form used in task
// lines and frontmatter.
func FormatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatTimestamp renders a timestamp in the frontmatter form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}
