package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/helpers"
	smock "github.com/iotflow/iotflow/pkg/services/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupLimitedRouter(deviceCache *smock.MockDeviceCache, cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(UseRateLimit(deviceCache, cfg, helpers.SetupLogger(config.Info, "ratelimit-test", "HTTP")))
	router.GET("/ping", func(c *gin.Context) { c.JSON(200, gin.H{"pong": true}) })
	return router
}

func TestRateLimitAllowsAndReportsRemaining(t *testing.T) {
	deviceCache := &smock.MockDeviceCache{}
	cfg := config.RateLimitConfig{Enabled: true, MaxRequests: 5, WindowSeconds: 60}

	deviceCache.On("Allow", mock.Anything, "key-42", 5, time.Minute).Return(true)
	deviceCache.On("Remaining", mock.Anything, "key-42", 5).Return(3)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-API-Key", "key-42")
	w := httptest.NewRecorder()
	setupLimitedRouter(deviceCache, cfg).ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitDenies(t *testing.T) {
	deviceCache := &smock.MockDeviceCache{}
	cfg := config.RateLimitConfig{Enabled: true, MaxRequests: 5, WindowSeconds: 60}

	deviceCache.On("Allow", mock.Anything, "key-42", 5, time.Minute).Return(false)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-API-Key", "key-42")
	w := httptest.NewRecorder()
	setupLimitedRouter(deviceCache, cfg).ServeHTTP(w, req)

	assert.Equal(t, 429, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	deviceCache := &smock.MockDeviceCache{}
	cfg := config.RateLimitConfig{Enabled: false}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	setupLimitedRouter(deviceCache, cfg).ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	deviceCache.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	deviceCache := &smock.MockDeviceCache{}
	cfg := config.RateLimitConfig{Enabled: true, MaxRequests: 5, WindowSeconds: 60}

	deviceCache.On("Allow", mock.Anything, mock.MatchedBy(func(key string) bool {
		return key != ""
	}), 5, time.Minute).Return(true)
	deviceCache.On("Remaining", mock.Anything, mock.Anything, 5).Return(4)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	setupLimitedRouter(deviceCache, cfg).ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}
