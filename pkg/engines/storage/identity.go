package storage

import (
	"context"
	"time"

	"github.com/iotflow/iotflow/pkg/models"
)

type DeviceIdentityRepo interface {
	SelectExists(ctx context.Context, deviceID int) (bool, *models.DeviceIdentity, error)
	SelectByAPIKey(ctx context.Context, apiKey string) (bool, *models.DeviceIdentity, error)
	SelectByUser(ctx context.Context, userID int) ([]models.DeviceIdentity, error)
	SelectAll(ctx context.Context, applyFunc func(models.DeviceIdentity)) error
	UpdateLastSeen(ctx context.Context, deviceID int, seenAt time.Time) error
	IsAvailable(ctx context.Context) bool
}
