package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iotflow/iotflow/pkg/errs"
	"github.com/iotflow/iotflow/pkg/resources"
	"github.com/iotflow/iotflow/pkg/services"
)

type telemetryHttpRoutes struct {
	svc services.TelemetryService
}

func NewTelemetryHttpRoutes(svc services.TelemetryService) *telemetryHttpRoutes {
	return &telemetryHttpRoutes{
		svc: svc,
	}
}

func apiKey(ctx *gin.Context) string {
	if key := ctx.GetHeader("X-API-Key"); key != "" {
		return key
	}
	return ctx.Query("api_key")
}

func writeServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidAPIKey):
		ctx.JSON(401, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrDeviceMismatch):
		ctx.JSON(403, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrValidateBadRequest), errors.Is(err, errs.ErrInvalidTimestamp):
		ctx.JSON(400, gin.H{"err": err.Error()})
	case errors.Is(err, errs.ErrTelemetryNotFound), errors.Is(err, errs.ErrConfigNotFound):
		ctx.JSON(404, gin.H{"err": err.Error()})
	default:
		ctx.JSON(500, gin.H{"err": err.Error()})
	}
}

type deviceUriParams struct {
	DeviceID int `uri:"id" binding:"required"`
}

// SubmitTelemetry takes no device ID. The device is whatever the API key
// resolves to.
func (r *telemetryHttpRoutes) SubmitTelemetry(ctx *gin.Context) {
	var requestBody resources.SubmitTelemetryBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	output, err := r.svc.SubmitTelemetry(ctx, services.SubmitTelemetryInput{
		APIKey:    apiKey(ctx),
		Data:      requestBody.Data,
		Metadata:  requestBody.Metadata,
		Timestamp: requestBody.Timestamp,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(201, resources.SubmitTelemetryResponse{
		Status:       "stored",
		DeviceID:     output.DeviceID,
		PointsStored: output.PointsStored,
	})
}

func (r *telemetryHttpRoutes) GetLatestTelemetry(ctx *gin.Context) {
	var params deviceUriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	output, err := r.svc.GetLatestTelemetry(ctx, services.GetLatestTelemetryInput{
		DeviceID: params.DeviceID,
		APIKey:   apiKey(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.GetLatestResponse{
		DeviceID:     output.DeviceID,
		Measurements: output.Measurements,
		Cached:       output.Cached,
	})
}

func (r *telemetryHttpRoutes) GetTelemetryRange(ctx *gin.Context) {
	var params deviceUriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	output, err := r.svc.GetTelemetryRange(ctx, services.GetTelemetryRangeInput{
		DeviceID: params.DeviceID,
		APIKey:   apiKey(ctx),
		Start:    ctx.Query("start"),
		End:      ctx.Query("end"),
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.GetRangeResponse{
		DeviceID: output.DeviceID,
		Count:    len(output.Results),
		Results:  output.Results,
	})
}

func (r *telemetryHttpRoutes) GetUserTelemetry(ctx *gin.Context) {
	type uriParams struct {
		UserID int `uri:"id" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	output, err := r.svc.GetUserTelemetry(ctx, services.GetUserTelemetryInput{
		UserID: params.UserID,
		APIKey: apiKey(ctx),
		Start:  ctx.Query("start"),
		End:    ctx.Query("end"),
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.GetUserTelemetryResponse{
		UserID:  output.UserID,
		Count:   output.Total,
		Results: output.Results,
	})
}

func (r *telemetryHttpRoutes) GetDeviceStatus(ctx *gin.Context) {
	var params deviceUriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	output, err := r.svc.GetDeviceStatus(ctx, services.GetDeviceStatusInput{
		DeviceID: params.DeviceID,
		APIKey:   apiKey(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.DeviceStatusResponse{
		DeviceID:     output.DeviceID,
		Name:         output.Name,
		DeviceType:   output.DeviceType,
		Status:       output.Status,
		Online:       output.Online,
		LastSeen:     output.LastSeen,
		RecentAlerts: output.RecentAlerts,
	})
}

func (r *telemetryHttpRoutes) GetUserDevices(ctx *gin.Context) {
	type uriParams struct {
		UserID int `uri:"id" binding:"required"`
	}

	var params uriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	output, err := r.svc.GetUserDevices(ctx, services.GetUserDevicesInput{
		UserID: params.UserID,
		APIKey: apiKey(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	devices := make([]resources.UserDeviceEntry, 0, len(output.Devices))
	for _, dev := range output.Devices {
		devices = append(devices, resources.UserDeviceEntry{
			DeviceID:   dev.DeviceID,
			Name:       dev.Name,
			DeviceType: dev.DeviceType,
			Status:     dev.Status,
			Online:     dev.Online,
		})
	}

	ctx.JSON(200, resources.GetUserDevicesResponse{
		UserID:  output.UserID,
		Count:   len(devices),
		Devices: devices,
	})
}

// GetAuditTrail serves both the device-scoped and the user-scoped event
// listings; the optional device ID comes from the route.
func (r *telemetryHttpRoutes) GetAuditTrail(ctx *gin.Context) {
	deviceID := 0
	if raw := ctx.Param("id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(400, gin.H{"err": "device id must be numeric"})
			return
		}
		deviceID = id
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	output, err := r.svc.GetAuditTrail(ctx, services.GetAuditTrailInput{
		APIKey:    apiKey(ctx),
		DeviceID:  deviceID,
		EventType: ctx.Query("type"),
		Start:     ctx.Query("start"),
		End:       ctx.Query("end"),
		Limit:     limit,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.GetAuditTrailResponse{
		UserID: output.UserID,
		Count:  len(output.Events),
		Events: output.Events,
	})
}

func (r *telemetryHttpRoutes) GetDeviceConfig(ctx *gin.Context) {
	var params deviceUriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	config, err := r.svc.GetDeviceConfig(ctx, services.GetDeviceConfigInput{
		DeviceID: params.DeviceID,
		APIKey:   apiKey(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.DeviceConfigResponse{
		DeviceID: config.DeviceID,
		Config:   config.Config,
		Updated:  config.Updated,
	})
}

func (r *telemetryHttpRoutes) UpdateDeviceConfig(ctx *gin.Context) {
	var params deviceUriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	var requestBody resources.DeviceConfigBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	config, err := r.svc.UpdateDeviceConfig(ctx, services.UpdateDeviceConfigInput{
		DeviceID: params.DeviceID,
		APIKey:   apiKey(ctx),
		Config:   requestBody.Config,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.DeviceConfigResponse{
		DeviceID: config.DeviceID,
		Config:   config.Config,
		Updated:  config.Updated,
	})
}

// GetStatus reports per-store availability. Unlike the health endpoint it
// always answers 200; callers read the flags.
func (r *telemetryHttpRoutes) GetStatus(ctx *gin.Context) {
	status, err := r.svc.GetStatus(ctx, services.GetStatusInput{})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.GetStatusResponse{
		Healthy:    status.Healthy(),
		TimeSeries: status.TimeSeries,
		Identity:   status.Identity,
		Cache:      status.Cache,
		Documents:  status.Documents,
	})
}

func (r *telemetryHttpRoutes) DeleteTelemetry(ctx *gin.Context) {
	var params deviceUriParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	var requestBody resources.DeleteTelemetryBody
	if err := ctx.BindJSON(&requestBody); err != nil {
		ctx.JSON(400, gin.H{"err": err.Error()})
		return
	}

	output, err := r.svc.DeleteTelemetry(ctx, services.DeleteTelemetryInput{
		DeviceID:  params.DeviceID,
		APIKey:    apiKey(ctx),
		StartTime: requestBody.StartTime,
		EndTime:   requestBody.EndTime,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	ctx.JSON(200, resources.DeleteTelemetryResponse{
		Status:   "deleted",
		DeviceID: output.DeviceID,
	})
}
