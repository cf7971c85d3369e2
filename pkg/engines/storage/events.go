package storage

import (
	"context"
	"time"

	"github.com/iotflow/iotflow/pkg/models"
)

type AuditEventRepo interface {
	// Append stores the event and returns its assigned document ID.
	Append(ctx context.Context, event *models.AuditEvent) (string, error)
	SelectByDevice(ctx context.Context, deviceID int, limit int) ([]models.AuditEvent, error)
	SelectByUser(ctx context.Context, userID int, limit int) ([]models.AuditEvent, error)
	SelectByType(ctx context.Context, eventType models.EventType, limit int) ([]models.AuditEvent, error)
	SelectByTimeRange(ctx context.Context, start time.Time, end time.Time, limit int) ([]models.AuditEvent, error)
	IsAvailable(ctx context.Context) bool
}

type DeviceConfigRepo interface {
	SelectByDevice(ctx context.Context, deviceID int) (bool, *models.DeviceConfig, error)
	Upsert(ctx context.Context, config *models.DeviceConfig) (*models.DeviceConfig, error)
}
