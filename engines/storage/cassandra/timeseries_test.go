package cassandra

import (
	"context"
	"testing"
	"time"

	"github.com/iotflow/iotflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestWriteRejectsZeroDeviceID(t *testing.T) {
	// The guard fires before any session use, so a nil session is fine.
	store := &CassandraTelemetryStore{}

	stored, err := store.Write(context.Background(), 0, 7, map[string]interface{}{"temperature": 23.5}, time.Now())

	assert.NoError(t, err)
	assert.False(t, stored)
}

func TestGroupPoints(t *testing.T) {
	t1 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(-time.Minute)

	points := []models.TelemetryPoint{
		{Timestamp: t1, MeasurementName: "temperature", Value: 23.5},
		{Timestamp: t1, MeasurementName: "humidity", Value: 65.2},
		{Timestamp: t2, MeasurementName: "temperature", Value: 23.1},
	}

	groups := groupPoints(points)

	assert.Len(t, groups, 2)
	assert.True(t, groups[0].Timestamp.Equal(t1))
	assert.Equal(t, map[string]float64{"temperature": 23.5, "humidity": 65.2}, groups[0].Measurements)
	assert.True(t, groups[1].Timestamp.Equal(t2))
	assert.Equal(t, map[string]float64{"temperature": 23.1}, groups[1].Measurements)
}

func TestGroupPointsEmpty(t *testing.T) {
	groups := groupPoints(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestGroupPointsPreservesDescendingOrder(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	var points []models.TelemetryPoint
	for i := 0; i < 5; i++ {
		points = append(points, models.TelemetryPoint{
			Timestamp:       base.Add(-time.Duration(i) * time.Minute),
			MeasurementName: "temperature",
			Value:           float64(20 + i),
		})
	}

	groups := groupPoints(points)

	assert.Len(t, groups, 5)
	for i := 1; i < len(groups); i++ {
		assert.True(t, groups[i].Timestamp.Before(groups[i-1].Timestamp))
	}
}
