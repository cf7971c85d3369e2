package models

import "time"

type EventType string

const (
	EventTelemetrySubmitted EventType = "telemetry.submitted"
	EventTelemetryDeleted   EventType = "telemetry.deleted"
	EventConfigUpdated      EventType = "device.config.updated"
)

// AuditEvent is the document appended to the event log for every mutating
// telemetry operation. ID and Timestamp are assigned by the store on append.
type AuditEvent struct {
	ID        string                 `json:"_id,omitempty"`
	Rev       string                 `json:"_rev,omitempty"`
	DeviceID  int                    `json:"device_id"`
	UserID    int                    `json:"user_id"`
	EventType EventType              `json:"event_type"`
	Details   map[string]interface{} `json:"details"`
	Timestamp time.Time              `json:"timestamp"`
}

// DeviceConfig is a free-form per-device configuration document.
type DeviceConfig struct {
	ID       string                 `json:"_id,omitempty"`
	Rev      string                 `json:"_rev,omitempty"`
	DeviceID int                    `json:"device_id"`
	Config   map[string]interface{} `json:"config"`
	Updated  time.Time              `json:"updated"`
}

// BackendStatus reports per-store availability for the health endpoint.
type BackendStatus struct {
	TimeSeries bool `json:"timeseries"`
	Identity   bool `json:"identity"`
	Cache      bool `json:"cache"`
	Documents  bool `json:"documents"`
}

func (s BackendStatus) Healthy() bool {
	return s.TimeSeries && s.Identity
}
