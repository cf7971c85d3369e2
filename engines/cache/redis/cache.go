package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/engines/cache"
	"github.com/iotflow/iotflow/pkg/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	onlineDevicesKey = "devices:online"
	maxStoredAlerts  = 100
)

func deviceKey(deviceID int) string   { return fmt.Sprintf("device:%d", deviceID) }
func apiKeyKey(apiKey string) string  { return fmt.Sprintf("apikey:%s", apiKey) }
func latestKey(deviceID int) string   { return fmt.Sprintf("telemetry:latest:%d", deviceID) }
func lastSeenKey(deviceID int) string { return fmt.Sprintf("device:lastseen:%d", deviceID) }
func alertsKey(deviceID int) string   { return fmt.Sprintf("alerts:%d", deviceID) }
func rateLimitKey(key string) string  { return fmt.Sprintf("ratelimit:%s", key) }

func CreateRedisConnection(logger *logrus.Entry, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Hostname, cfg.Port),
		Password: string(cfg.Password),
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Errorf("could not connect to redis: %s", err)
		return nil, err
	}

	return client, nil
}

// RedisDeviceCache degrades every operation to a miss or a no-op when the
// server is unreachable. Callers treat its answers as hints, never as the
// source of truth.
type RedisDeviceCache struct {
	client  *goredis.Client
	logger  *logrus.Entry
	nowFunc func() time.Time
}

func NewDeviceCache(logger *logrus.Entry, client *goredis.Client) cache.DeviceCache {
	return &RedisDeviceCache{
		client:  client,
		logger:  logger,
		nowFunc: time.Now,
	}
}

func (c *RedisDeviceCache) getDevice(ctx context.Context, key string) (*models.DeviceIdentity, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warnf("cache read failed for %s: %s", key, err)
		}
		return nil, false
	}

	var device models.DeviceIdentity
	if err := json.Unmarshal([]byte(raw), &device); err != nil {
		c.logger.Warnf("corrupt cache entry %s: %s", key, err)
		return nil, false
	}
	return &device, true
}

func (c *RedisDeviceCache) setDevice(ctx context.Context, key string, device *models.DeviceIdentity, ttl time.Duration) {
	raw, err := json.Marshal(device)
	if err != nil {
		c.logger.Warnf("could not serialize device %d: %s", device.DeviceID, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warnf("cache write failed for %s: %s", key, err)
	}
}

func (c *RedisDeviceCache) GetDeviceIdentity(ctx context.Context, deviceID int) (*models.DeviceIdentity, bool) {
	return c.getDevice(ctx, deviceKey(deviceID))
}

func (c *RedisDeviceCache) CacheDeviceIdentity(ctx context.Context, device *models.DeviceIdentity) {
	c.setDevice(ctx, deviceKey(device.DeviceID), device, cache.APIKeyTTL)
}

func (c *RedisDeviceCache) GetAPIKeyDevice(ctx context.Context, apiKey string) (*models.DeviceIdentity, bool) {
	return c.getDevice(ctx, apiKeyKey(apiKey))
}

func (c *RedisDeviceCache) CacheAPIKey(ctx context.Context, apiKey string, device *models.DeviceIdentity) {
	c.setDevice(ctx, apiKeyKey(apiKey), device, cache.APIKeyTTL)
}

// GetLatest reads the latest-telemetry hash and coerces every field to a
// float. An absent or expired key is a plain miss.
func (c *RedisDeviceCache) GetLatest(ctx context.Context, deviceID int) (map[string]float64, bool) {
	fields, err := c.client.HGetAll(ctx, latestKey(deviceID)).Result()
	if err != nil {
		c.logger.Warnf("cache read failed for device %d: %s", deviceID, err)
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}

	measurements := make(map[string]float64, len(fields))
	for name, raw := range fields {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.logger.Warnf("corrupt latest field %s for device %d: %s", name, deviceID, err)
			continue
		}
		measurements[name] = value
	}
	return measurements, true
}

// CacheLatest stores measurements as hash fields so single measurements can
// be refreshed later without rewriting the snapshot.
func (c *RedisDeviceCache) CacheLatest(ctx context.Context, deviceID int, measurements map[string]float64) {
	if len(measurements) == 0 {
		return
	}

	fields := make(map[string]string, len(measurements))
	for name, value := range measurements {
		fields[name] = strconv.FormatFloat(value, 'f', -1, 64)
	}

	key := latestKey(deviceID)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, cache.LatestTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warnf("cache write failed for device %d: %s", deviceID, err)
	}
}

func (c *RedisDeviceCache) UpdateMeasurement(ctx context.Context, deviceID int, name string, value float64) {
	key := latestKey(deviceID)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, name, strconv.FormatFloat(value, 'f', -1, 64))
	pipe.Expire(ctx, key, cache.LatestTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warnf("could not update measurement %s for device %d: %s", name, deviceID, err)
	}
}

func (c *RedisDeviceCache) GetMeasurement(ctx context.Context, deviceID int, name string) (float64, bool) {
	raw, err := c.client.HGet(ctx, latestKey(deviceID), name).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warnf("could not read measurement %s for device %d: %s", name, deviceID, err)
		}
		return 0, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.Warnf("corrupt latest field %s for device %d: %s", name, deviceID, err)
		return 0, false
	}
	return value, true
}

func (c *RedisDeviceCache) InvalidateLatest(ctx context.Context, deviceID int) {
	if err := c.client.Del(ctx, latestKey(deviceID)).Err(); err != nil {
		c.logger.Warnf("could not invalidate latest for device %d: %s", deviceID, err)
	}
}

// InvalidateDevice drops every cached trace of a device in one pipelined
// round trip. A concurrent reader sees at worst a full miss.
func (c *RedisDeviceCache) InvalidateDevice(ctx context.Context, deviceID int) {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, deviceKey(deviceID), latestKey(deviceID), lastSeenKey(deviceID), alertsKey(deviceID))
	pipe.ZRem(ctx, onlineDevicesKey, strconv.Itoa(deviceID))
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warnf("could not invalidate device %d: %s", deviceID, err)
	}
}

func (c *RedisDeviceCache) MarkSeen(ctx context.Context, deviceID int, seenAt time.Time) {
	if err := c.client.ZAdd(ctx, onlineDevicesKey, goredis.Z{
		Score:  float64(seenAt.Unix()),
		Member: strconv.Itoa(deviceID),
	}).Err(); err != nil {
		c.logger.Warnf("could not record presence for device %d: %s", deviceID, err)
	}
	if err := c.client.Set(ctx, lastSeenKey(deviceID), seenAt.UTC().Format(time.RFC3339), 0).Err(); err != nil {
		c.logger.Warnf("could not record last-seen for device %d: %s", deviceID, err)
	}
}

func (c *RedisDeviceCache) MarkOffline(ctx context.Context, deviceID int) {
	if err := c.client.ZRem(ctx, onlineDevicesKey, strconv.Itoa(deviceID)).Err(); err != nil {
		c.logger.Warnf("could not remove device %d from presence set: %s", deviceID, err)
	}
}

func (c *RedisDeviceCache) LastSeen(ctx context.Context, deviceID int) (time.Time, bool) {
	raw, err := c.client.Get(ctx, lastSeenKey(deviceID)).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warnf("could not read last-seen for device %d: %s", deviceID, err)
		}
		return time.Time{}, false
	}

	seenAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return seenAt, true
}

// OnlineDevices lists devices that reported within the online window. Stale
// members stay in the set until their next report overwrites the score; each
// device holds at most one entry, so the set is bounded by distinct devices.
func (c *RedisDeviceCache) OnlineDevices(ctx context.Context) []int {
	cutoff := c.nowFunc().Add(-cache.OnlineWindow).Unix()

	members, err := c.client.ZRangeByScore(ctx, onlineDevicesKey, &goredis.ZRangeBy{
		Min: fmt.Sprintf("%d", cutoff),
		Max: "+inf",
	}).Result()
	if err != nil {
		c.logger.Warnf("could not read presence set: %s", err)
		return nil
	}

	online := make([]int, 0, len(members))
	for _, member := range members {
		if id, err := strconv.Atoi(member); err == nil {
			online = append(online, id)
		}
	}
	return online
}

func (c *RedisDeviceCache) IsOnline(ctx context.Context, deviceID int) bool {
	score, err := c.client.ZScore(ctx, onlineDevicesKey, strconv.Itoa(deviceID)).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warnf("could not read presence for device %d: %s", deviceID, err)
		}
		return false
	}
	return int64(score) >= c.nowFunc().Add(-cache.OnlineWindow).Unix()
}

func (c *RedisDeviceCache) PushAlert(ctx context.Context, deviceID int, alert map[string]interface{}) {
	raw, err := json.Marshal(alert)
	if err != nil {
		c.logger.Warnf("could not serialize alert for device %d: %s", deviceID, err)
		return
	}

	key := alertsKey(deviceID)
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, maxStoredAlerts-1)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warnf("could not push alert for device %d: %s", deviceID, err)
	}
}

func (c *RedisDeviceCache) RecentAlerts(ctx context.Context, deviceID int, limit int) []map[string]interface{} {
	if limit <= 0 || limit > maxStoredAlerts {
		limit = maxStoredAlerts
	}

	entries, err := c.client.LRange(ctx, alertsKey(deviceID), 0, int64(limit-1)).Result()
	if err != nil {
		c.logger.Warnf("could not read alerts for device %d: %s", deviceID, err)
		return nil
	}

	alerts := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		var alert map[string]interface{}
		if err := json.Unmarshal([]byte(entry), &alert); err != nil {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// Allow applies a fixed-window limit: the first request in a window creates
// the counter with the window TTL, later requests increment it. The counter
// saturates at max so a steady flood cannot overflow it. Errors allow the
// request through; a broken cache must not take ingestion down with it.
func (c *RedisDeviceCache) Allow(ctx context.Context, key string, max int, window time.Duration) bool {
	rlKey := rateLimitKey(key)

	raw, err := c.client.Get(ctx, rlKey).Result()
	if err == goredis.Nil {
		if err := c.client.SetEx(ctx, rlKey, "1", window).Err(); err != nil {
			c.logger.Warnf("could not start rate-limit window for '%s': %s", key, err)
		}
		return true
	}
	if err != nil {
		c.logger.Warnf("rate-limit read failed for '%s': %s", key, err)
		return true
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		c.logger.Warnf("corrupt rate-limit counter for '%s': %s", key, err)
		return true
	}

	if count >= max {
		return false
	}

	if err := c.client.Incr(ctx, rlKey).Err(); err != nil {
		c.logger.Warnf("rate-limit increment failed for '%s': %s", key, err)
	}
	return true
}

// Remaining never goes negative: Allow stops incrementing at max, so a
// saturated window reports exactly zero.
func (c *RedisDeviceCache) Remaining(ctx context.Context, key string, max int) int {
	raw, err := c.client.Get(ctx, rateLimitKey(key)).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warnf("rate-limit read failed for '%s': %s", key, err)
		}
		return max
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		c.logger.Warnf("corrupt rate-limit counter for '%s': %s", key, err)
		return max
	}

	if count >= max {
		return 0
	}
	return max - count
}

func (c *RedisDeviceCache) KeyTTL(ctx context.Context, key string) time.Duration {
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		c.logger.Warnf("could not read TTL for '%s': %s", key, err)
		return cache.TTLMissing
	}
	return ttl
}

func (c *RedisDeviceCache) SetKeyTTL(ctx context.Context, key string, ttl time.Duration) {
	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		c.logger.Warnf("could not set TTL for '%s': %s", key, err)
	}
}

func (c *RedisDeviceCache) PersistKey(ctx context.Context, key string) {
	if err := c.client.Persist(ctx, key).Err(); err != nil {
		c.logger.Warnf("could not strip TTL from '%s': %s", key, err)
	}
}

func (c *RedisDeviceCache) IsAvailable(ctx context.Context) bool {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.Warnf("cache ping failed: %s", err)
		return false
	}
	return true
}
