package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/iotflow/iotflow/pkg/models"
	"github.com/iotflow/iotflow/pkg/services"
)

type hcheckRoute struct {
	svc  services.TelemetryService
	info models.APIServiceInfo
}

func NewHealthCheckRoute(svc services.TelemetryService, info models.APIServiceInfo) *hcheckRoute {
	return &hcheckRoute{
		svc:  svc,
		info: info,
	}
}

func (r *hcheckRoute) HealthCheck(ctx *gin.Context) {
	status, _ := r.svc.GetStatus(ctx, services.GetStatusInput{})

	code := 200
	if !status.Healthy() {
		code = 503
	}

	ctx.JSON(code, gin.H{
		"health":     status.Healthy(),
		"stores":     status,
		"version":    r.info.Version,
		"build":      r.info.BuildSHA,
		"build_time": r.info.BuildTime,
	})
}
