package models

import "time"

type DeviceStatus string

const (
	DeviceActive      DeviceStatus = "active"
	DeviceInactive    DeviceStatus = "inactive"
	DeviceMaintenance DeviceStatus = "maintenance"
)

// DeviceIdentity is the relational record used to resolve API keys to
// device and owner identifiers. Telemetry itself never lives here.
type DeviceIdentity struct {
	DeviceID          int          `json:"device_id" gorm:"primaryKey"`
	UserID            int          `json:"user_id" gorm:"index"`
	Name              string       `json:"name"`
	DeviceType        string       `json:"device_type"`
	APIKey            string       `json:"-" gorm:"uniqueIndex"`
	Status            DeviceStatus `json:"status"`
	LastSeen          *time.Time   `json:"last_seen,omitempty"`
	CreationTimestamp time.Time    `json:"creation_ts"`
}

func (DeviceIdentity) TableName() string {
	return "devices"
}
