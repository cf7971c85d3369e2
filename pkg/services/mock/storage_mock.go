package mock

import (
	"context"
	"time"

	"github.com/iotflow/iotflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

type MockDeviceIdentityRepo struct {
	mock.Mock
}

func (r *MockDeviceIdentityRepo) SelectExists(ctx context.Context, deviceID int) (bool, *models.DeviceIdentity, error) {
	args := r.Called(ctx, deviceID)
	var device *models.DeviceIdentity
	if args.Get(1) != nil {
		device = args.Get(1).(*models.DeviceIdentity)
	}
	return args.Bool(0), device, args.Error(2)
}

func (r *MockDeviceIdentityRepo) SelectByAPIKey(ctx context.Context, apiKey string) (bool, *models.DeviceIdentity, error) {
	args := r.Called(ctx, apiKey)
	var device *models.DeviceIdentity
	if args.Get(1) != nil {
		device = args.Get(1).(*models.DeviceIdentity)
	}
	return args.Bool(0), device, args.Error(2)
}

func (r *MockDeviceIdentityRepo) SelectByUser(ctx context.Context, userID int) ([]models.DeviceIdentity, error) {
	args := r.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DeviceIdentity), args.Error(1)
}

func (r *MockDeviceIdentityRepo) SelectAll(ctx context.Context, applyFunc func(models.DeviceIdentity)) error {
	args := r.Called(ctx, applyFunc)
	return args.Error(0)
}

func (r *MockDeviceIdentityRepo) UpdateLastSeen(ctx context.Context, deviceID int, seenAt time.Time) error {
	args := r.Called(ctx, deviceID, seenAt)
	return args.Error(0)
}

func (r *MockDeviceIdentityRepo) IsAvailable(ctx context.Context) bool {
	args := r.Called(ctx)
	return args.Bool(0)
}

type MockTelemetryRepo struct {
	mock.Mock
}

func (r *MockTelemetryRepo) Write(ctx context.Context, deviceID int, userID int, measurements map[string]interface{}, ts time.Time) (bool, error) {
	args := r.Called(ctx, deviceID, userID, measurements, ts)
	return args.Bool(0), args.Error(1)
}

func (r *MockTelemetryRepo) GetRange(ctx context.Context, deviceID int, start time.Time, end time.Time, limit int) ([]models.TelemetryGroup, error) {
	args := r.Called(ctx, deviceID, start, end, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TelemetryGroup), args.Error(1)
}

func (r *MockTelemetryRepo) GetLatest(ctx context.Context, deviceID int) (*models.LatestSnapshot, error) {
	args := r.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LatestSnapshot), args.Error(1)
}

func (r *MockTelemetryRepo) GetUserRange(ctx context.Context, userID int, start time.Time, end time.Time, limit int) ([]models.UserTelemetryRecord, error) {
	args := r.Called(ctx, userID, start, end, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserTelemetryRecord), args.Error(1)
}

func (r *MockTelemetryRepo) CountUserPoints(ctx context.Context, userID int, start time.Time, end time.Time) (int, error) {
	args := r.Called(ctx, userID, start, end)
	return args.Int(0), args.Error(1)
}

func (r *MockTelemetryRepo) DeleteRange(ctx context.Context, deviceID int, start time.Time, end time.Time) (bool, error) {
	args := r.Called(ctx, deviceID, start, end)
	return args.Bool(0), args.Error(1)
}

func (r *MockTelemetryRepo) IsAvailable(ctx context.Context) bool {
	args := r.Called(ctx)
	return args.Bool(0)
}

type MockAuditEventRepo struct {
	mock.Mock
}

func (r *MockAuditEventRepo) Append(ctx context.Context, event *models.AuditEvent) (string, error) {
	args := r.Called(ctx, event)
	return args.String(0), args.Error(1)
}

func (r *MockAuditEventRepo) SelectByDevice(ctx context.Context, deviceID int, limit int) ([]models.AuditEvent, error) {
	args := r.Called(ctx, deviceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEvent), args.Error(1)
}

func (r *MockAuditEventRepo) SelectByUser(ctx context.Context, userID int, limit int) ([]models.AuditEvent, error) {
	args := r.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEvent), args.Error(1)
}

func (r *MockAuditEventRepo) SelectByType(ctx context.Context, eventType models.EventType, limit int) ([]models.AuditEvent, error) {
	args := r.Called(ctx, eventType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEvent), args.Error(1)
}

func (r *MockAuditEventRepo) SelectByTimeRange(ctx context.Context, start time.Time, end time.Time, limit int) ([]models.AuditEvent, error) {
	args := r.Called(ctx, start, end, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditEvent), args.Error(1)
}

func (r *MockAuditEventRepo) IsAvailable(ctx context.Context) bool {
	args := r.Called(ctx)
	return args.Bool(0)
}

type MockDeviceConfigRepo struct {
	mock.Mock
}

func (r *MockDeviceConfigRepo) SelectByDevice(ctx context.Context, deviceID int) (bool, *models.DeviceConfig, error) {
	args := r.Called(ctx, deviceID)
	var config *models.DeviceConfig
	if args.Get(1) != nil {
		config = args.Get(1).(*models.DeviceConfig)
	}
	return args.Bool(0), config, args.Error(2)
}

func (r *MockDeviceConfigRepo) Upsert(ctx context.Context, config *models.DeviceConfig) (*models.DeviceConfig, error) {
	args := r.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeviceConfig), args.Error(1)
}
