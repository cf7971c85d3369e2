package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRangeTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	var testcases = []struct {
		name     string
		expr     string
		expected time.Time
	}{
		{name: "Empty", expr: "", expected: now},
		{name: "Now", expr: "now", expected: now},
		{name: "Minutes", expr: "-30m", expected: now.Add(-30 * time.Minute)},
		{name: "Hours", expr: "-1h", expected: now.Add(-time.Hour)},
		{name: "Day", expr: "-24h", expected: now.Add(-24 * time.Hour)},
		{name: "Days", expr: "-7d", expected: now.Add(-7 * 24 * time.Hour)},
		{name: "Weeks", expr: "-2w", expected: now.Add(-14 * 24 * time.Hour)},
		{name: "AbsoluteRFC3339", expr: "2025-03-01T09:30:00Z", expected: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)},
		{name: "AbsoluteNoZone", expr: "2025-03-01T09:30:00", expected: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)},
		{name: "MalformedFallsBack", expr: "yesterday", expected: now.Add(-time.Hour)},
		{name: "BadUnitFallsBack", expr: "-5y", expected: now.Add(-time.Hour)},
		{name: "BadNumberFallsBack", expr: "-xh", expected: now.Add(-time.Hour)},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseRangeTime(tc.expr, now)
			assert.True(t, got.Equal(tc.expected), "expected %s, got %s", tc.expected, got)
		})
	}
}

func TestParseSubmissionTimestamp(t *testing.T) {
	t.Run("UTCWithZone", func(t *testing.T) {
		got, err := ParseSubmissionTimestamp("2025-03-01T09:30:00Z")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), got)
	})

	t.Run("ExplicitOffset", func(t *testing.T) {
		got, err := ParseSubmissionTimestamp("2025-03-01T09:30:00+02:00")
		assert.NoError(t, err)
		assert.True(t, got.Equal(time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC)))
	})

	t.Run("NoZoneAssumesUTC", func(t *testing.T) {
		got, err := ParseSubmissionTimestamp("2025-03-01T09:30:00")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), got)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseSubmissionTimestamp("01/03/2025 09:30")
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ParseSubmissionTimestamp("")
		assert.Error(t, err)
	})
}
