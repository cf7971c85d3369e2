package services

import (
	"context"
	"time"

	"github.com/iotflow/iotflow/pkg/models"
)

type TelemetryService interface {
	ResolveDeviceByAPIKey(ctx context.Context, input ResolveDeviceByAPIKeyInput) (*models.DeviceIdentity, error)
	SubmitTelemetry(ctx context.Context, input SubmitTelemetryInput) (*SubmitTelemetryOutput, error)
	GetLatestTelemetry(ctx context.Context, input GetLatestTelemetryInput) (*GetLatestTelemetryOutput, error)
	GetTelemetryRange(ctx context.Context, input GetTelemetryRangeInput) (*GetTelemetryRangeOutput, error)
	GetUserTelemetry(ctx context.Context, input GetUserTelemetryInput) (*GetUserTelemetryOutput, error)
	DeleteTelemetry(ctx context.Context, input DeleteTelemetryInput) (*DeleteTelemetryOutput, error)
	GetDeviceStatus(ctx context.Context, input GetDeviceStatusInput) (*GetDeviceStatusOutput, error)
	GetUserDevices(ctx context.Context, input GetUserDevicesInput) (*GetUserDevicesOutput, error)
	GetAuditTrail(ctx context.Context, input GetAuditTrailInput) (*GetAuditTrailOutput, error)
	GetDeviceConfig(ctx context.Context, input GetDeviceConfigInput) (*models.DeviceConfig, error)
	UpdateDeviceConfig(ctx context.Context, input UpdateDeviceConfigInput) (*models.DeviceConfig, error)
	GetStatus(ctx context.Context, input GetStatusInput) (*models.BackendStatus, error)
}

type ResolveDeviceByAPIKeyInput struct {
	APIKey string `validate:"required"`
}

// SubmitTelemetry identifies the device from the API key alone; callers
// never claim a device ID on the write path.
type SubmitTelemetryInput struct {
	APIKey    string                 `validate:"required"`
	Data      map[string]interface{} `validate:"required"`
	Metadata  map[string]interface{}
	Timestamp string
}

type SubmitTelemetryOutput struct {
	DeviceID     int
	UserID       int
	Timestamp    time.Time
	PointsStored int
	Measurements []string
}

type GetLatestTelemetryInput struct {
	DeviceID int    `validate:"required"`
	APIKey   string `validate:"required"`
}

type GetLatestTelemetryOutput struct {
	DeviceID     int
	Measurements map[string]float64
	Cached       bool
}

type GetTelemetryRangeInput struct {
	DeviceID int    `validate:"required"`
	APIKey   string `validate:"required"`
	// Start and End are lenient range expressions, not strict instants.
	Start string
	End   string
	Limit int
}

type GetTelemetryRangeOutput struct {
	DeviceID int
	Results  []models.TelemetryGroup
}

type GetUserTelemetryInput struct {
	UserID int    `validate:"required"`
	APIKey string `validate:"required"`
	Start  string
	End    string
	Limit  int
}

type GetUserTelemetryOutput struct {
	UserID int
	// Total counts every stored point in the window, independent of the
	// query limit.
	Total   int
	Results []models.UserTelemetryRecord
}

type DeleteTelemetryInput struct {
	DeviceID  int    `validate:"required"`
	APIKey    string `validate:"required"`
	StartTime string `validate:"required"`
	EndTime   string `validate:"required"`
}

type DeleteTelemetryOutput struct {
	DeviceID int
	Deleted  bool
	Start    time.Time
	End      time.Time
}

type GetDeviceStatusInput struct {
	DeviceID int    `validate:"required"`
	APIKey   string `validate:"required"`
}

type GetDeviceStatusOutput struct {
	DeviceID     int
	Name         string
	DeviceType   string
	Status       models.DeviceStatus
	Online       bool
	LastSeen     *time.Time
	RecentAlerts []map[string]interface{}
}

type GetUserDevicesInput struct {
	UserID int    `validate:"required"`
	APIKey string `validate:"required"`
}

type UserDeviceEntry struct {
	DeviceID   int
	Name       string
	DeviceType string
	Status     models.DeviceStatus
	Online     bool
}

type GetUserDevicesOutput struct {
	UserID  int
	Devices []UserDeviceEntry
}

// GetAuditTrailInput narrows the query in order of precedence: a device ID
// beats an event type, which beats a time window. With none set the trail
// covers the caller's whole user.
type GetAuditTrailInput struct {
	APIKey    string `validate:"required"`
	DeviceID  int
	EventType string
	Start     string
	End       string
	Limit     int
}

type GetAuditTrailOutput struct {
	UserID int
	Events []models.AuditEvent
}

type GetDeviceConfigInput struct {
	DeviceID int    `validate:"required"`
	APIKey   string `validate:"required"`
}

type UpdateDeviceConfigInput struct {
	DeviceID int                    `validate:"required"`
	APIKey   string                 `validate:"required"`
	Config   map[string]interface{} `validate:"required"`
}

type GetStatusInput struct{}
