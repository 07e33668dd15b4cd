package model

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDeadline is returned by ParseDeadline for unparseable input.
var ErrInvalidDeadline = errors.New("invalid deadline")

// deadlineLayouts are tried in order. Layouts without an offset are UTC.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDeadline parses the ISO-8601 subset accepted for deadlines: full
// RFC 3339, date-time with or without seconds, or a bare date.
func ParseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDeadline
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDeadline
}
