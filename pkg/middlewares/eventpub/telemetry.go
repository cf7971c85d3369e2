package eventpub

import (
	"context"

	"github.com/iotflow/iotflow/pkg/models"
	"github.com/iotflow/iotflow/pkg/services"
)

type telemetryEventPublisher struct {
	next       services.TelemetryService
	eventMWPub ICloudEventPublisher
}

// NewTelemetryEventPublisher wraps the service so that every successful
// mutation also emits a CloudEvent on the bus. Read operations pass through.
func NewTelemetryEventPublisher(eventMWPub ICloudEventPublisher) services.TelemetryMiddleware {
	return func(next services.TelemetryService) services.TelemetryService {
		return &telemetryEventPublisher{
			next:       next,
			eventMWPub: eventMWPub,
		}
	}
}

func (mw *telemetryEventPublisher) ResolveDeviceByAPIKey(ctx context.Context, input services.ResolveDeviceByAPIKeyInput) (*models.DeviceIdentity, error) {
	return mw.next.ResolveDeviceByAPIKey(ctx, input)
}

func (mw *telemetryEventPublisher) SubmitTelemetry(ctx context.Context, input services.SubmitTelemetryInput) (output *services.SubmitTelemetryOutput, err error) {
	defer func() {
		if err == nil {
			mw.eventMWPub.PublishCloudEvent(ctx, models.EventTelemetrySubmitted, output)
		}
	}()
	return mw.next.SubmitTelemetry(ctx, input)
}

func (mw *telemetryEventPublisher) GetLatestTelemetry(ctx context.Context, input services.GetLatestTelemetryInput) (*services.GetLatestTelemetryOutput, error) {
	return mw.next.GetLatestTelemetry(ctx, input)
}

func (mw *telemetryEventPublisher) GetTelemetryRange(ctx context.Context, input services.GetTelemetryRangeInput) (*services.GetTelemetryRangeOutput, error) {
	return mw.next.GetTelemetryRange(ctx, input)
}

func (mw *telemetryEventPublisher) GetUserTelemetry(ctx context.Context, input services.GetUserTelemetryInput) (*services.GetUserTelemetryOutput, error) {
	return mw.next.GetUserTelemetry(ctx, input)
}

func (mw *telemetryEventPublisher) DeleteTelemetry(ctx context.Context, input services.DeleteTelemetryInput) (output *services.DeleteTelemetryOutput, err error) {
	defer func() {
		if err == nil {
			mw.eventMWPub.PublishCloudEvent(ctx, models.EventTelemetryDeleted, output)
		}
	}()
	return mw.next.DeleteTelemetry(ctx, input)
}

func (mw *telemetryEventPublisher) GetDeviceStatus(ctx context.Context, input services.GetDeviceStatusInput) (*services.GetDeviceStatusOutput, error) {
	return mw.next.GetDeviceStatus(ctx, input)
}

func (mw *telemetryEventPublisher) GetUserDevices(ctx context.Context, input services.GetUserDevicesInput) (*services.GetUserDevicesOutput, error) {
	return mw.next.GetUserDevices(ctx, input)
}

func (mw *telemetryEventPublisher) GetAuditTrail(ctx context.Context, input services.GetAuditTrailInput) (*services.GetAuditTrailOutput, error) {
	return mw.next.GetAuditTrail(ctx, input)
}

func (mw *telemetryEventPublisher) GetDeviceConfig(ctx context.Context, input services.GetDeviceConfigInput) (*models.DeviceConfig, error) {
	return mw.next.GetDeviceConfig(ctx, input)
}

func (mw *telemetryEventPublisher) UpdateDeviceConfig(ctx context.Context, input services.UpdateDeviceConfigInput) (output *models.DeviceConfig, err error) {
	defer func() {
		if err == nil {
			mw.eventMWPub.PublishCloudEvent(ctx, models.EventConfigUpdated, output)
		}
	}()
	return mw.next.UpdateDeviceConfig(ctx, input)
}

func (mw *telemetryEventPublisher) GetStatus(ctx context.Context, input services.GetStatusInput) (*models.BackendStatus, error) {
	return mw.next.GetStatus(ctx, input)
}
