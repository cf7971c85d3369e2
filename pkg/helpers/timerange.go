package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRangeTime resolves a query time-range expression relative to now.
// Accepted forms: "now", relative offsets like "-30m", "-1h", "-24h", "-7d",
// "-2w", or an absolute ISO-8601 instant (a trailing 'Z' is understood as
// UTC). Malformed expressions fall back to one hour ago: query ranges are a
// caller convenience and must not fail a dashboard over a typo. Submission
// timestamps go through ParseSubmissionTimestamp instead, which rejects bad
// input.
func ParseRangeTime(expr string, now time.Time) time.Time {
	if expr == "" || expr == "now" {
		return now
	}

	if strings.HasPrefix(expr, "-") {
		if d, ok := parseRelativeOffset(expr[1:]); ok {
			return now.Add(-d)
		}
		return now.Add(-time.Hour)
	}

	if t, err := ParseSubmissionTimestamp(expr); err == nil {
		return t
	}

	return now.Add(-time.Hour)
}

func parseRelativeOffset(expr string) (time.Duration, bool) {
	if len(expr) < 2 {
		return 0, false
	}

	value, err := strconv.Atoi(expr[:len(expr)-1])
	if err != nil || value < 0 {
		return 0, false
	}

	switch expr[len(expr)-1] {
	case 'm':
		return time.Duration(value) * time.Minute, true
	case 'h':
		return time.Duration(value) * time.Hour, true
	case 'd':
		return time.Duration(value) * 24 * time.Hour, true
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, true
	}

	return 0, false
}

// ParseSubmissionTimestamp parses a device-supplied ISO-8601 timestamp.
// Timestamps without an offset are taken as UTC.
func ParseSubmissionTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp '%s'", raw)
}
