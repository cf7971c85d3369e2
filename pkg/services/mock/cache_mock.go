package mock

import (
	"context"
	"time"

	"github.com/iotflow/iotflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

type MockDeviceCache struct {
	mock.Mock
}

func (c *MockDeviceCache) GetDeviceIdentity(ctx context.Context, deviceID int) (*models.DeviceIdentity, bool) {
	args := c.Called(ctx, deviceID)
	var device *models.DeviceIdentity
	if args.Get(0) != nil {
		device = args.Get(0).(*models.DeviceIdentity)
	}
	return device, args.Bool(1)
}

func (c *MockDeviceCache) CacheDeviceIdentity(ctx context.Context, device *models.DeviceIdentity) {
	c.Called(ctx, device)
}

func (c *MockDeviceCache) GetAPIKeyDevice(ctx context.Context, apiKey string) (*models.DeviceIdentity, bool) {
	args := c.Called(ctx, apiKey)
	var device *models.DeviceIdentity
	if args.Get(0) != nil {
		device = args.Get(0).(*models.DeviceIdentity)
	}
	return device, args.Bool(1)
}

func (c *MockDeviceCache) CacheAPIKey(ctx context.Context, apiKey string, device *models.DeviceIdentity) {
	c.Called(ctx, apiKey, device)
}

func (c *MockDeviceCache) GetLatest(ctx context.Context, deviceID int) (map[string]float64, bool) {
	args := c.Called(ctx, deviceID)
	var measurements map[string]float64
	if args.Get(0) != nil {
		measurements = args.Get(0).(map[string]float64)
	}
	return measurements, args.Bool(1)
}

func (c *MockDeviceCache) CacheLatest(ctx context.Context, deviceID int, measurements map[string]float64) {
	c.Called(ctx, deviceID, measurements)
}

func (c *MockDeviceCache) UpdateMeasurement(ctx context.Context, deviceID int, name string, value float64) {
	c.Called(ctx, deviceID, name, value)
}

func (c *MockDeviceCache) GetMeasurement(ctx context.Context, deviceID int, name string) (float64, bool) {
	args := c.Called(ctx, deviceID, name)
	return args.Get(0).(float64), args.Bool(1)
}

func (c *MockDeviceCache) InvalidateLatest(ctx context.Context, deviceID int) {
	c.Called(ctx, deviceID)
}

func (c *MockDeviceCache) InvalidateDevice(ctx context.Context, deviceID int) {
	c.Called(ctx, deviceID)
}

func (c *MockDeviceCache) MarkSeen(ctx context.Context, deviceID int, seenAt time.Time) {
	c.Called(ctx, deviceID, seenAt)
}

func (c *MockDeviceCache) MarkOffline(ctx context.Context, deviceID int) {
	c.Called(ctx, deviceID)
}

func (c *MockDeviceCache) LastSeen(ctx context.Context, deviceID int) (time.Time, bool) {
	args := c.Called(ctx, deviceID)
	return args.Get(0).(time.Time), args.Bool(1)
}

func (c *MockDeviceCache) OnlineDevices(ctx context.Context) []int {
	args := c.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]int)
}

func (c *MockDeviceCache) IsOnline(ctx context.Context, deviceID int) bool {
	args := c.Called(ctx, deviceID)
	return args.Bool(0)
}

func (c *MockDeviceCache) PushAlert(ctx context.Context, deviceID int, alert map[string]interface{}) {
	c.Called(ctx, deviceID, alert)
}

func (c *MockDeviceCache) RecentAlerts(ctx context.Context, deviceID int, limit int) []map[string]interface{} {
	args := c.Called(ctx, deviceID, limit)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]map[string]interface{})
}

func (c *MockDeviceCache) Allow(ctx context.Context, key string, max int, window time.Duration) bool {
	args := c.Called(ctx, key, max, window)
	return args.Bool(0)
}

func (c *MockDeviceCache) Remaining(ctx context.Context, key string, max int) int {
	args := c.Called(ctx, key, max)
	return args.Int(0)
}

func (c *MockDeviceCache) KeyTTL(ctx context.Context, key string) time.Duration {
	args := c.Called(ctx, key)
	return args.Get(0).(time.Duration)
}

func (c *MockDeviceCache) SetKeyTTL(ctx context.Context, key string, ttl time.Duration) {
	c.Called(ctx, key, ttl)
}

func (c *MockDeviceCache) PersistKey(ctx context.Context, key string) {
	c.Called(ctx, key)
}

func (c *MockDeviceCache) IsAvailable(ctx context.Context) bool {
	args := c.Called(ctx)
	return args.Bool(0)
}
