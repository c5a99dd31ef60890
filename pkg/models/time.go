package models

import "time"

// TimeLayout is the canonical timestamp format for everything the server
// persists or sends: RFC 3339 in UTC with millisecond precision.
// The fixed width means stored timestamps also order correctly as strings.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ClaimSentinel marks an execution as claimed-but-unanswered. It is the epoch
// rendered in TimeLayout, so any real completion time sorts after it.
const ClaimSentinel = "1970-01-01T00:00:00.000Z"

// FormatTime renders t in TimeLayout, normalized to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Now returns the current time pre-formatted in TimeLayout.
func Now() string {
	return FormatTime(time.Now())
}

// ParseTime parses a TimeLayout/RFC-3339 timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
