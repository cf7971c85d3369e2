package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/engines/cache"
	"github.com/iotflow/iotflow/pkg/helpers"
	"github.com/iotflow/iotflow/pkg/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *RedisDeviceCache) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	deviceCache := &RedisDeviceCache{
		client:  client,
		logger:  helpers.SetupLogger(config.Info, "cache-test", "Cache"),
		nowFunc: time.Now,
	}
	return mr, deviceCache
}

func TestDeviceIdentityRoundTrip(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	device := &models.DeviceIdentity{DeviceID: 42, UserID: 7, Name: "probe", APIKey: "key-42", Status: models.DeviceActive}

	_, hit := deviceCache.GetAPIKeyDevice(ctx, "key-42")
	assert.False(t, hit)

	deviceCache.CacheAPIKey(ctx, "key-42", device)

	cached, hit := deviceCache.GetAPIKeyDevice(ctx, "key-42")
	assert.True(t, hit)
	assert.Equal(t, 42, cached.DeviceID)
	assert.Equal(t, 7, cached.UserID)
}

func TestAPIKeyEntryExpires(t *testing.T) {
	mr, deviceCache := setupCache(t)
	ctx := context.Background()

	deviceCache.CacheAPIKey(ctx, "key-42", &models.DeviceIdentity{DeviceID: 42})

	mr.FastForward(cache.APIKeyTTL + time.Second)

	_, hit := deviceCache.GetAPIKeyDevice(ctx, "key-42")
	assert.False(t, hit)
}

func TestLatestRoundTripAndInvalidation(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	measurements := map[string]float64{"temperature": 23.5, "humidity": 65.2}
	deviceCache.CacheLatest(ctx, 42, measurements)

	cached, hit := deviceCache.GetLatest(ctx, 42)
	assert.True(t, hit)
	assert.Equal(t, measurements, cached)

	deviceCache.InvalidateLatest(ctx, 42)

	_, hit = deviceCache.GetLatest(ctx, 42)
	assert.False(t, hit)
}

func TestLatestEntryExpires(t *testing.T) {
	mr, deviceCache := setupCache(t)
	ctx := context.Background()

	deviceCache.CacheLatest(ctx, 42, map[string]float64{"temperature": 23.5})

	mr.FastForward(cache.LatestTTL + time.Second)

	_, hit := deviceCache.GetLatest(ctx, 42)
	assert.False(t, hit)
}

func TestUpdateSingleMeasurement(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	deviceCache.CacheLatest(ctx, 42, map[string]float64{"temperature": 23.5, "humidity": 65.2})

	deviceCache.UpdateMeasurement(ctx, 42, "temperature", 24.1)

	value, hit := deviceCache.GetMeasurement(ctx, 42, "temperature")
	assert.True(t, hit)
	assert.Equal(t, 24.1, value)

	// The untouched field survives the single-field update.
	cached, hit := deviceCache.GetLatest(ctx, 42)
	assert.True(t, hit)
	assert.Equal(t, 65.2, cached["humidity"])

	_, hit = deviceCache.GetMeasurement(ctx, 42, "pressure")
	assert.False(t, hit)
}

func TestInvalidateDeviceClearsAllKeys(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	deviceCache.CacheDeviceIdentity(ctx, &models.DeviceIdentity{DeviceID: 42})
	deviceCache.CacheLatest(ctx, 42, map[string]float64{"temperature": 23.5})
	deviceCache.MarkSeen(ctx, 42, time.Now())

	deviceCache.InvalidateDevice(ctx, 42)

	_, hit := deviceCache.GetDeviceIdentity(ctx, 42)
	assert.False(t, hit)
	_, hit = deviceCache.GetLatest(ctx, 42)
	assert.False(t, hit)
	_, hit = deviceCache.LastSeen(ctx, 42)
	assert.False(t, hit)
	assert.False(t, deviceCache.IsOnline(ctx, 42))
}

func TestPresenceWindow(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	deviceCache.nowFunc = func() time.Time { return now }

	deviceCache.MarkSeen(ctx, 1, now.Add(-2*time.Minute))
	deviceCache.MarkSeen(ctx, 2, now.Add(-10*time.Minute))

	assert.True(t, deviceCache.IsOnline(ctx, 1))
	assert.False(t, deviceCache.IsOnline(ctx, 2))
	assert.False(t, deviceCache.IsOnline(ctx, 3))

	assert.Equal(t, []int{1}, deviceCache.OnlineDevices(ctx))
}

func TestMarkOfflineRemovesPresenceEntry(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	deviceCache.nowFunc = func() time.Time { return now }

	deviceCache.MarkSeen(ctx, 1, now)
	assert.True(t, deviceCache.IsOnline(ctx, 1))

	deviceCache.MarkOffline(ctx, 1)
	assert.False(t, deviceCache.IsOnline(ctx, 1))
	assert.Empty(t, deviceCache.OnlineDevices(ctx))

	// A fresh report restores presence.
	deviceCache.MarkSeen(ctx, 1, now)
	assert.True(t, deviceCache.IsOnline(ctx, 1))
}

func TestPresenceDerivedOnRead(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	deviceCache.nowFunc = func() time.Time { return now }

	deviceCache.MarkSeen(ctx, 1, now)
	assert.True(t, deviceCache.IsOnline(ctx, 1))

	// The same device falls out of the window as time passes, with no
	// further writes.
	deviceCache.nowFunc = func() time.Time { return now.Add(6 * time.Minute) }
	assert.False(t, deviceCache.IsOnline(ctx, 1))
	assert.Empty(t, deviceCache.OnlineDevices(ctx))
}

func TestLastSeen(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	seenAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	deviceCache.MarkSeen(ctx, 42, seenAt)

	got, hit := deviceCache.LastSeen(ctx, 42)
	assert.True(t, hit)
	assert.True(t, got.Equal(seenAt))
}

func TestAlerts(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	deviceCache.PushAlert(ctx, 42, map[string]interface{}{"kind": "overheat", "value": 90.0})
	deviceCache.PushAlert(ctx, 42, map[string]interface{}{"kind": "offline"})

	alerts := deviceCache.RecentAlerts(ctx, 42, 10)
	assert.Len(t, alerts, 2)
	assert.Equal(t, "offline", alerts[0]["kind"])
	assert.Equal(t, "overheat", alerts[1]["kind"])
}

func TestRateLimitFixedWindow(t *testing.T) {
	mr, deviceCache := setupCache(t)
	ctx := context.Background()

	window := 60 * time.Second
	for i := 0; i < 3; i++ {
		assert.True(t, deviceCache.Allow(ctx, "key-42", 3, window), "request %d should pass", i+1)
	}
	assert.False(t, deviceCache.Allow(ctx, "key-42", 3, window))
	assert.False(t, deviceCache.Allow(ctx, "key-42", 3, window))

	// A new window starts fresh once the counter expires.
	mr.FastForward(window + time.Second)
	assert.True(t, deviceCache.Allow(ctx, "key-42", 3, window))
}

func TestRateLimitRemaining(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	window := 60 * time.Second
	assert.Equal(t, 3, deviceCache.Remaining(ctx, "key-42", 3))

	deviceCache.Allow(ctx, "key-42", 3, window)
	assert.Equal(t, 2, deviceCache.Remaining(ctx, "key-42", 3))

	deviceCache.Allow(ctx, "key-42", 3, window)
	deviceCache.Allow(ctx, "key-42", 3, window)
	assert.Equal(t, 0, deviceCache.Remaining(ctx, "key-42", 3))

	// Denied requests do not increment, so remaining stays at zero
	// instead of going negative.
	deviceCache.Allow(ctx, "key-42", 3, window)
	assert.Equal(t, 0, deviceCache.Remaining(ctx, "key-42", 3))
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr, deviceCache := setupCache(t)

	mr.Close()

	assert.True(t, deviceCache.Allow(context.Background(), "key-42", 3, time.Minute))
}

func TestKeyTTLSentinels(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	deviceCache.MarkSeen(ctx, 42, time.Now())
	deviceCache.CacheLatest(ctx, 42, map[string]float64{"temperature": 21.0})

	assert.Equal(t, cache.TTLNone, deviceCache.KeyTTL(ctx, "device:lastseen:42"))
	assert.Greater(t, deviceCache.KeyTTL(ctx, "telemetry:latest:42"), time.Duration(0))
	assert.Equal(t, cache.TTLMissing, deviceCache.KeyTTL(ctx, "no:such:key"))
}

func TestTTLOverrides(t *testing.T) {
	_, deviceCache := setupCache(t)
	ctx := context.Background()

	deviceCache.CacheLatest(ctx, 42, map[string]float64{"temperature": 21.0})

	deviceCache.SetKeyTTL(ctx, "telemetry:latest:42", 30*time.Minute)
	assert.Greater(t, deviceCache.KeyTTL(ctx, "telemetry:latest:42"), cache.LatestTTL)

	deviceCache.PersistKey(ctx, "telemetry:latest:42")
	assert.Equal(t, cache.TTLNone, deviceCache.KeyTTL(ctx, "telemetry:latest:42"))
}

func TestUnavailableCacheDegradesToMiss(t *testing.T) {
	mr, deviceCache := setupCache(t)
	ctx := context.Background()

	mr.Close()

	_, hit := deviceCache.GetAPIKeyDevice(ctx, "key-42")
	assert.False(t, hit)
	deviceCache.CacheLatest(ctx, 42, map[string]float64{"temperature": 21.0})
	assert.False(t, deviceCache.IsAvailable(ctx))
}
