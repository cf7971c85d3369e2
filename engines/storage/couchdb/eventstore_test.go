package couchdb

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEventTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2025, 3, 1, 1, 0, 0, 500_000_000, loc)

	normalized := normalizeEventTime(ts)

	assert.Equal(t, time.UTC, normalized.Location())
	assert.Zero(t, normalized.Nanosecond())
	assert.Equal(t, "2025-03-01T00:00:00Z", normalized.Format(time.RFC3339))
}

func TestTimeRangeSelectorMatchesStoredPrecision(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 900_000_000, time.UTC)
	end := start.Add(time.Hour)

	bounds := timeRangeSelector(start, end)["timestamp"].(map[string]interface{})

	// A sub-second event in the boundary second serializes to exactly the
	// lower bound, so the string comparison mango performs keeps it in range.
	stored, err := json.Marshal(normalizeEventTime(start))
	assert.NoError(t, err)
	assert.Equal(t, `"`+bounds["$gte"].(string)+`"`, string(stored))
	assert.Equal(t, "2025-03-01T01:00:00Z", bounds["$lte"])
}
