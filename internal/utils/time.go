package utils

import (
	"strings"
	"time"
)

const (
	layoutDate      = "2006-01-02"
	layoutTimestamp = "2006-01-02T15:04:05.000Z"
)

// NowUTC returns the current time in UTC at millisecond precision.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(layoutDate, strings.TrimSpace(s))
}

// FormatTimestamp renders t the way booking dates are shown to clients.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(layoutTimestamp)
}
