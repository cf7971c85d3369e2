package storage

import (
	"context"
	"time"

	"github.com/iotflow/iotflow/pkg/models"
)

type TelemetryRepo interface {
	// Write stores every numeric measurement in the submission. It returns
	// false without error when no measurement is storable.
	Write(ctx context.Context, deviceID int, userID int, measurements map[string]interface{}, ts time.Time) (bool, error)
	GetRange(ctx context.Context, deviceID int, start time.Time, end time.Time, limit int) ([]models.TelemetryGroup, error)
	GetLatest(ctx context.Context, deviceID int) (*models.LatestSnapshot, error)
	GetUserRange(ctx context.Context, userID int, start time.Time, end time.Time, limit int) ([]models.UserTelemetryRecord, error)
	CountUserPoints(ctx context.Context, userID int, start time.Time, end time.Time) (int, error)
	// DeleteRange removes stored points for the device inside the window.
	// It reports whether any deletion was issued.
	DeleteRange(ctx context.Context, deviceID int, start time.Time, end time.Time) (bool, error)
	IsAvailable(ctx context.Context) bool
}
