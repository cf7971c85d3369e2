package cache

import (
	"context"
	"time"

	"github.com/iotflow/iotflow/pkg/models"
)

const (
	// OnlineWindow is how recently a device must have reported to count as
	// online. Presence is derived from last-report times on read; nothing
	// marks a device offline.
	OnlineWindow = 5 * time.Minute

	APIKeyTTL = time.Hour
	LatestTTL = 10 * time.Minute

	// TTL sentinels for keys without expiry and keys that do not exist.
	TTLNone    = time.Duration(-1)
	TTLMissing = time.Duration(-2)
)

// DeviceCache is the best-effort acceleration layer. Every method degrades
// to a miss or a no-op on transport failure; callers never see cache errors
// and must not treat a miss as authoritative absence.
type DeviceCache interface {
	GetDeviceIdentity(ctx context.Context, deviceID int) (*models.DeviceIdentity, bool)
	CacheDeviceIdentity(ctx context.Context, device *models.DeviceIdentity)
	GetAPIKeyDevice(ctx context.Context, apiKey string) (*models.DeviceIdentity, bool)
	CacheAPIKey(ctx context.Context, apiKey string, device *models.DeviceIdentity)

	// Latest telemetry is a field map so a single measurement can be
	// refreshed without rewriting the whole snapshot.
	GetLatest(ctx context.Context, deviceID int) (map[string]float64, bool)
	CacheLatest(ctx context.Context, deviceID int, measurements map[string]float64)
	UpdateMeasurement(ctx context.Context, deviceID int, name string, value float64)
	GetMeasurement(ctx context.Context, deviceID int, name string) (float64, bool)
	InvalidateLatest(ctx context.Context, deviceID int)
	InvalidateDevice(ctx context.Context, deviceID int)

	// MarkSeen records the report instant for presence tracking and the
	// per-device last-seen key. MarkOffline removes the presence entry
	// entirely; a removed device has no presence record until it reports
	// again.
	MarkSeen(ctx context.Context, deviceID int, seenAt time.Time)
	MarkOffline(ctx context.Context, deviceID int)
	LastSeen(ctx context.Context, deviceID int) (time.Time, bool)
	OnlineDevices(ctx context.Context) []int
	IsOnline(ctx context.Context, deviceID int) bool

	PushAlert(ctx context.Context, deviceID int, alert map[string]interface{})
	RecentAlerts(ctx context.Context, deviceID int, limit int) []map[string]interface{}

	// Allow applies a fixed-window rate limit for the key. Transport
	// failures allow the request. Remaining reports how many requests are
	// left in the current window, never below zero.
	Allow(ctx context.Context, key string, max int, window time.Duration) bool
	Remaining(ctx context.Context, key string, max int) int

	KeyTTL(ctx context.Context, key string) time.Duration
	SetKeyTTL(ctx context.Context, key string, ttl time.Duration)
	PersistKey(ctx context.Context, key string)
	IsAvailable(ctx context.Context) bool
}
