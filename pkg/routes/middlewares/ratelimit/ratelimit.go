package ratelimit

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/engines/cache"
	"github.com/sirupsen/logrus"
)

// UseRateLimit enforces a fixed-window request quota per API key, falling
// back to the client IP for unauthenticated requests. The counter lives in
// the cache layer; if the cache is unreachable requests are allowed through,
// never queued or rejected.
func UseRateLimit(deviceCache cache.DeviceCache, cfg config.RateLimitConfig, logger *logrus.Entry) gin.HandlerFunc {
	window := time.Duration(cfg.WindowSeconds) * time.Second

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}
		if key == "" {
			key = c.ClientIP()
		}

		if !deviceCache.Allow(c.Request.Context(), key, cfg.MaxRequests, window) {
			logger.Warnf("rate limit exceeded for '%s'", key)
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(429, gin.H{"err": "rate limit exceeded", "remaining": 0})
			return
		}

		remaining := deviceCache.Remaining(c.Request.Context(), key, cfg.MaxRequests)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
