package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericMeasurements(t *testing.T) {
	raw := map[string]interface{}{
		"temperature": 23.5,
		"humidity":    65.2,
		"status":      "ok",
		"enabled":     true,
		"tags":        []interface{}{"a", "b"},
		"nested":      map[string]interface{}{"x": 1},
		"count":       42,
	}

	numeric := NumericMeasurements(raw)

	assert.Equal(t, map[string]float64{
		"temperature": 23.5,
		"humidity":    65.2,
		"count":       42,
	}, numeric)
}

func TestNumericMeasurementsAllNonNumeric(t *testing.T) {
	raw := map[string]interface{}{
		"status":  "offline",
		"enabled": false,
	}

	assert.Empty(t, NumericMeasurements(raw))
}

func TestNumericValue(t *testing.T) {
	var testcases = []struct {
		name     string
		input    interface{}
		expected float64
		ok       bool
	}{
		{name: "Float64", input: 23.5, expected: 23.5, ok: true},
		{name: "Int", input: 7, expected: 7, ok: true},
		{name: "Int64", input: int64(9), expected: 9, ok: true},
		{name: "JSONNumber", input: json.Number("3.14"), expected: 3.14, ok: true},
		{name: "BadJSONNumber", input: json.Number("abc"), ok: false},
		{name: "Bool", input: true, ok: false},
		{name: "String", input: "23.5", ok: false},
		{name: "Nil", input: nil, ok: false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NumericValue(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, got)
			}
		})
	}
}
