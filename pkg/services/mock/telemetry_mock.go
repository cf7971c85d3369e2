package mock

import (
	"context"

	"github.com/iotflow/iotflow/pkg/models"
	"github.com/iotflow/iotflow/pkg/services"
	"github.com/stretchr/testify/mock"
)

type MockTelemetryService struct {
	mock.Mock
}

func (ts *MockTelemetryService) ResolveDeviceByAPIKey(ctx context.Context, input services.ResolveDeviceByAPIKeyInput) (*models.DeviceIdentity, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceIdentity), args.Error(1)
}

func (ts *MockTelemetryService) SubmitTelemetry(ctx context.Context, input services.SubmitTelemetryInput) (*services.SubmitTelemetryOutput, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmitTelemetryOutput), args.Error(1)
}

func (ts *MockTelemetryService) GetLatestTelemetry(ctx context.Context, input services.GetLatestTelemetryInput) (*services.GetLatestTelemetryOutput, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GetLatestTelemetryOutput), args.Error(1)
}

func (ts *MockTelemetryService) GetTelemetryRange(ctx context.Context, input services.GetTelemetryRangeInput) (*services.GetTelemetryRangeOutput, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GetTelemetryRangeOutput), args.Error(1)
}

func (ts *MockTelemetryService) GetUserTelemetry(ctx context.Context, input services.GetUserTelemetryInput) (*services.GetUserTelemetryOutput, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GetUserTelemetryOutput), args.Error(1)
}

func (ts *MockTelemetryService) DeleteTelemetry(ctx context.Context, input services.DeleteTelemetryInput) (*services.DeleteTelemetryOutput, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DeleteTelemetryOutput), args.Error(1)
}

func (ts *MockTelemetryService) GetDeviceStatus(ctx context.Context, input services.GetDeviceStatusInput) (*services.GetDeviceStatusOutput, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GetDeviceStatusOutput), args.Error(1)
}

func (ts *MockTelemetryService) GetUserDevices(ctx context.Context, input services.GetUserDevicesInput) (*services.GetUserDevicesOutput, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GetUserDevicesOutput), args.Error(1)
}

func (ts *MockTelemetryService) GetAuditTrail(ctx context.Context, input services.GetAuditTrailInput) (*services.GetAuditTrailOutput, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GetAuditTrailOutput), args.Error(1)
}

func (ts *MockTelemetryService) GetDeviceConfig(ctx context.Context, input services.GetDeviceConfigInput) (*models.DeviceConfig, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceConfig), args.Error(1)
}

func (ts *MockTelemetryService) UpdateDeviceConfig(ctx context.Context, input services.UpdateDeviceConfigInput) (*models.DeviceConfig, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceConfig), args.Error(1)
}

func (ts *MockTelemetryService) GetStatus(ctx context.Context, input services.GetStatusInput) (*models.BackendStatus, error) {
	args := ts.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackendStatus), args.Error(1)
}
