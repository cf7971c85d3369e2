package resources

import (
	"time"

	"github.com/iotflow/iotflow/pkg/models"
)

type SubmitTelemetryBody struct {
	Data      map[string]interface{} `json:"data" binding:"required"`
	Metadata  map[string]interface{} `json:"metadata"`
	Timestamp string                 `json:"timestamp"`
}

type SubmitTelemetryResponse struct {
	Status       string `json:"status"`
	DeviceID     int    `json:"device_id"`
	PointsStored int    `json:"points_stored"`
}

type GetLatestResponse struct {
	DeviceID     int                `json:"device_id"`
	Measurements map[string]float64 `json:"measurements"`
	Cached       bool               `json:"cached"`
}

type GetRangeResponse struct {
	DeviceID int                     `json:"device_id"`
	Count    int                     `json:"count"`
	Results  []models.TelemetryGroup `json:"results"`
}

type GetUserTelemetryResponse struct {
	UserID  int                          `json:"user_id"`
	Count   int                          `json:"count"`
	Results []models.UserTelemetryRecord `json:"results"`
}

type DeviceStatusResponse struct {
	DeviceID     int                      `json:"device_id"`
	Name         string                   `json:"name"`
	DeviceType   string                   `json:"device_type"`
	Status       models.DeviceStatus      `json:"status"`
	Online       bool                     `json:"online"`
	LastSeen     *time.Time               `json:"last_seen,omitempty"`
	RecentAlerts []map[string]interface{} `json:"recent_alerts,omitempty"`
}

type UserDeviceEntry struct {
	DeviceID   int                 `json:"device_id"`
	Name       string              `json:"name"`
	DeviceType string              `json:"device_type"`
	Status     models.DeviceStatus `json:"status"`
	Online     bool                `json:"online"`
}

type GetUserDevicesResponse struct {
	UserID  int               `json:"user_id"`
	Count   int               `json:"count"`
	Devices []UserDeviceEntry `json:"devices"`
}

type GetAuditTrailResponse struct {
	UserID int                 `json:"user_id"`
	Count  int                 `json:"count"`
	Events []models.AuditEvent `json:"events"`
}

type DeviceConfigBody struct {
	Config map[string]interface{} `json:"config" binding:"required"`
}

type DeviceConfigResponse struct {
	DeviceID int                    `json:"device_id"`
	Config   map[string]interface{} `json:"config"`
	Updated  time.Time              `json:"updated"`
}

type GetStatusResponse struct {
	Healthy    bool `json:"healthy"`
	TimeSeries bool `json:"time_series"`
	Identity   bool `json:"identity"`
	Cache      bool `json:"cache"`
	Documents  bool `json:"documents"`
}

type DeleteTelemetryBody struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type DeleteTelemetryResponse struct {
	Status   string `json:"status"`
	DeviceID int    `json:"device_id"`
}
