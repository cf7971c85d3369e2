package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/iotflow/iotflow/pkg/config"
	"github.com/iotflow/iotflow/pkg/controllers"
	"github.com/iotflow/iotflow/pkg/engines/cache"
	"github.com/iotflow/iotflow/pkg/routes/middlewares/ratelimit"
	"github.com/iotflow/iotflow/pkg/services"
	"github.com/sirupsen/logrus"
)

func NewTelemetryHTTPLayer(router *gin.RouterGroup, svc services.TelemetryService, deviceCache cache.DeviceCache, rateLimitCfg config.RateLimitConfig, logger *logrus.Entry) {
	routes := controllers.NewTelemetryHttpRoutes(svc)

	rv1 := router.Group("/api/v1")
	rv1.Use(ratelimit.UseRateLimit(deviceCache, rateLimitCfg, logger))

	rv1.POST("/telemetry", routes.SubmitTelemetry)
	rv1.GET("/telemetry/status", routes.GetStatus)
	rv1.GET("/telemetry/:id", routes.GetTelemetryRange)
	rv1.GET("/telemetry/:id/latest", routes.GetLatestTelemetry)
	rv1.DELETE("/telemetry/:id", routes.DeleteTelemetry)

	rv1.GET("/devices/:id/status", routes.GetDeviceStatus)
	rv1.GET("/devices/:id/events", routes.GetAuditTrail)
	rv1.GET("/devices/:id/config", routes.GetDeviceConfig)
	rv1.PUT("/devices/:id/config", routes.UpdateDeviceConfig)

	rv1.GET("/events", routes.GetAuditTrail)

	rv1.GET("/users/:id/telemetry", routes.GetUserTelemetry)
	rv1.GET("/users/:id/devices", routes.GetUserDevices)
}
