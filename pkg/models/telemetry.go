package models

import (
	"encoding/json"
	"time"
)

// TelemetryPoint is a single stored measurement sample. A submission with N
// numeric measurements produces N points sharing one timestamp.
type TelemetryPoint struct {
	DeviceID        int       `json:"device_id"`
	UserID          int       `json:"user_id"`
	Timestamp       time.Time `json:"timestamp"`
	MeasurementName string    `json:"measurement_name"`
	Value           float64   `json:"value"`
}

// LatestSnapshot holds the most recent value seen per measurement name for a
// device. Rows are upserted independently, so measurements submitted together
// may briefly disagree on timestamp while a write is in flight.
type LatestSnapshot struct {
	DeviceID     int                  `json:"device_id"`
	Measurements map[string]float64   `json:"measurements"`
	Timestamps   map[string]time.Time `json:"timestamps"`
}

// TelemetryGroup is a range-query result row: all measurements that share a
// timestamp, newest first in the response.
type TelemetryGroup struct {
	Timestamp    time.Time          `json:"timestamp"`
	Measurements map[string]float64 `json:"measurements"`
}

// UserTelemetryRecord mirrors a stored point in the per-user rollup used by
// account-wide queries.
type UserTelemetryRecord struct {
	UserID          int       `json:"user_id"`
	DeviceID        int       `json:"device_id"`
	Timestamp       time.Time `json:"timestamp"`
	MeasurementName string    `json:"measurement_name"`
	Value           float64   `json:"value"`
}

// NumericMeasurements filters a raw submission payload down to the values
// that can be stored as float64 samples. Strings, booleans, nulls and nested
// structures are dropped without error; devices routinely mix status text
// into the same payload as sensor readings.
func NumericMeasurements(raw map[string]interface{}) map[string]float64 {
	numeric := map[string]float64{}
	for name, value := range raw {
		if f, ok := NumericValue(value); ok {
			numeric[name] = f
		}
	}
	return numeric
}

// NumericValue converts a decoded JSON value to float64. Booleans are
// explicitly rejected even though they convert trivially: a bool reading is
// state, not a measurement.
func NumericValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
