package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iotflow/iotflow/pkg/engines/cache"
	"github.com/iotflow/iotflow/pkg/engines/storage"
	"github.com/iotflow/iotflow/pkg/errs"
	"github.com/iotflow/iotflow/pkg/helpers"
	"github.com/iotflow/iotflow/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRangeLimit = 1000
	MaxRangeLimit     = 10000

	DefaultEventLimit = 50
	MaxEventLimit     = 500

	recentAlertCount = 10
)

var telemetryValidate *validator.Validate

type TelemetryMiddleware func(TelemetryService) TelemetryService

type TelemetryServiceBackend struct {
	identityStorage  storage.DeviceIdentityRepo
	telemetryStorage storage.TelemetryRepo
	eventsStorage    storage.AuditEventRepo
	configsStorage   storage.DeviceConfigRepo
	deviceCache      cache.DeviceCache
	service          TelemetryService
	logger           *logrus.Entry
}

type TelemetryServiceBuilder struct {
	Logger           *logrus.Entry
	IdentityStorage  storage.DeviceIdentityRepo
	TelemetryStorage storage.TelemetryRepo
	EventsStorage    storage.AuditEventRepo
	ConfigsStorage   storage.DeviceConfigRepo
	Cache            cache.DeviceCache
}

func NewTelemetryService(builder TelemetryServiceBuilder) TelemetryService {
	telemetryValidate = validator.New()
	svc := &TelemetryServiceBackend{
		identityStorage:  builder.IdentityStorage,
		telemetryStorage: builder.TelemetryStorage,
		eventsStorage:    builder.EventsStorage,
		configsStorage:   builder.ConfigsStorage,
		deviceCache:      builder.Cache,
		logger:           builder.Logger,
	}

	svc.service = svc
	return svc
}

func (svc *TelemetryServiceBackend) SetService(service TelemetryService) {
	svc.service = service
}

// resolveByAPIKey authenticates an API key. The cache is consulted first,
// but a hit is advisory only: the referenced device is re-checked against
// the authoritative identity store so a cached entry cannot outlive a
// deleted or deactivated device. Identity-store failures are reported as an
// invalid key rather than an internal error so that callers cannot
// distinguish a broken identity store from a bad credential.
func (svc *TelemetryServiceBackend) resolveByAPIKey(ctx context.Context, lFunc *logrus.Entry, apiKey string) (*models.DeviceIdentity, error) {
	if cached, hit := svc.deviceCache.GetAPIKeyDevice(ctx, apiKey); hit {
		exists, device, err := svc.identityStorage.SelectExists(ctx, cached.DeviceID)
		if err != nil {
			lFunc.Errorf("could not re-validate device %d in identity store: %s", cached.DeviceID, err)
			return nil, errs.ErrInvalidAPIKey
		}
		if !exists || device.Status == models.DeviceInactive {
			return nil, errs.ErrInvalidAPIKey
		}
		return device, nil
	}

	exists, device, err := svc.identityStorage.SelectByAPIKey(ctx, apiKey)
	if err != nil {
		lFunc.Errorf("could not resolve API key in identity store: %s", err)
		return nil, errs.ErrInvalidAPIKey
	}
	if !exists {
		return nil, errs.ErrInvalidAPIKey
	}

	svc.deviceCache.CacheAPIKey(ctx, apiKey, device)
	return device, nil
}

// resolveDevice additionally checks the key actually belongs to the claimed
// device.
func (svc *TelemetryServiceBackend) resolveDevice(ctx context.Context, lFunc *logrus.Entry, deviceID int, apiKey string) (*models.DeviceIdentity, error) {
	device, err := svc.resolveByAPIKey(ctx, lFunc, apiKey)
	if err != nil {
		return nil, err
	}
	if device.DeviceID != deviceID {
		return nil, errs.ErrDeviceMismatch
	}
	return device, nil
}

func (svc *TelemetryServiceBackend) ResolveDeviceByAPIKey(ctx context.Context, input ResolveDeviceByAPIKeyInput) (*models.DeviceIdentity, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	return svc.resolveByAPIKey(ctx, lFunc, input.APIKey)
}

func (svc *TelemetryServiceBackend) SubmitTelemetry(ctx context.Context, input SubmitTelemetryInput) (*SubmitTelemetryOutput, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	if len(input.Data) == 0 {
		lFunc.Errorf("submission carries no measurements")
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveByAPIKey(ctx, lFunc, input.APIKey)
	if err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	if input.Timestamp != "" {
		ts, err = helpers.ParseSubmissionTimestamp(input.Timestamp)
		if err != nil {
			lFunc.Errorf("rejecting submission for device %d: %s", device.DeviceID, err)
			return nil, errs.ErrInvalidTimestamp
		}
	}

	stored, err := svc.telemetryStorage.Write(ctx, device.DeviceID, device.UserID, input.Data, ts)
	if err != nil {
		lFunc.Errorf("could not write telemetry for device %d: %s", device.DeviceID, err)
		return nil, fmt.Errorf("%w: %s", errs.ErrTimeSeriesUnavailable, err)
	}

	numeric := models.NumericMeasurements(input.Data)
	names := make([]string, 0, len(numeric))
	for name := range numeric {
		names = append(names, name)
	}

	// Everything past the durable write is best effort. Failures are logged
	// and the submission still succeeds.
	if stored {
		svc.deviceCache.CacheLatest(ctx, device.DeviceID, numeric)
	}
	svc.deviceCache.MarkSeen(ctx, device.DeviceID, ts)

	if err := svc.identityStorage.UpdateLastSeen(ctx, device.DeviceID, ts); err != nil {
		lFunc.Warnf("could not update last-seen for device %d: %s", device.DeviceID, err)
	}

	_, err = svc.eventsStorage.Append(ctx, &models.AuditEvent{
		DeviceID:  device.DeviceID,
		UserID:    device.UserID,
		EventType: models.EventTelemetrySubmitted,
		Details: map[string]interface{}{
			"measurements": names,
			"count":        len(numeric),
		},
	})
	if err != nil {
		lFunc.Warnf("could not append audit event for device %d: %s", device.DeviceID, err)
	}

	return &SubmitTelemetryOutput{
		DeviceID:     device.DeviceID,
		UserID:       device.UserID,
		Timestamp:    ts,
		PointsStored: len(numeric),
		Measurements: names,
	}, nil
}

func (svc *TelemetryServiceBackend) GetLatestTelemetry(ctx context.Context, input GetLatestTelemetryInput) (*GetLatestTelemetryOutput, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveDevice(ctx, lFunc, input.DeviceID, input.APIKey)
	if err != nil {
		return nil, err
	}

	if measurements, hit := svc.deviceCache.GetLatest(ctx, device.DeviceID); hit {
		return &GetLatestTelemetryOutput{
			DeviceID:     device.DeviceID,
			Measurements: measurements,
			Cached:       true,
		}, nil
	}

	snapshot, err := svc.telemetryStorage.GetLatest(ctx, device.DeviceID)
	if err != nil {
		lFunc.Errorf("could not read latest telemetry for device %d: %s", device.DeviceID, err)
		return nil, fmt.Errorf("%w: %s", errs.ErrTimeSeriesUnavailable, err)
	}
	if snapshot == nil || len(snapshot.Measurements) == 0 {
		// Misses are never cached. An empty device would otherwise keep
		// serving stale emptiness after its first submission.
		return nil, errs.ErrTelemetryNotFound
	}

	svc.deviceCache.CacheLatest(ctx, device.DeviceID, snapshot.Measurements)

	return &GetLatestTelemetryOutput{
		DeviceID:     device.DeviceID,
		Measurements: snapshot.Measurements,
		Cached:       false,
	}, nil
}

func (svc *TelemetryServiceBackend) GetTelemetryRange(ctx context.Context, input GetTelemetryRangeInput) (*GetTelemetryRangeOutput, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveDevice(ctx, lFunc, input.DeviceID, input.APIKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	start := helpers.ParseRangeTime(input.Start, now)
	if input.Start == "" {
		start = now.Add(-time.Hour)
	}
	end := helpers.ParseRangeTime(input.End, now)
	limit := clampLimit(input.Limit)

	results, err := svc.telemetryStorage.GetRange(ctx, device.DeviceID, start, end, limit)
	if err != nil {
		lFunc.Errorf("could not read telemetry range for device %d: %s", device.DeviceID, err)
		return nil, fmt.Errorf("%w: %s", errs.ErrTimeSeriesUnavailable, err)
	}

	return &GetTelemetryRangeOutput{
		DeviceID: device.DeviceID,
		Results:  results,
	}, nil
}

func (svc *TelemetryServiceBackend) GetUserTelemetry(ctx context.Context, input GetUserTelemetryInput) (*GetUserTelemetryOutput, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveByAPIKey(ctx, lFunc, input.APIKey)
	if err != nil {
		return nil, err
	}
	if device.UserID != input.UserID {
		return nil, errs.ErrDeviceMismatch
	}

	now := time.Now().UTC()
	start := helpers.ParseRangeTime(input.Start, now)
	if input.Start == "" {
		start = now.Add(-24 * time.Hour)
	}
	end := helpers.ParseRangeTime(input.End, now)
	limit := clampLimit(input.Limit)

	results, err := svc.telemetryStorage.GetUserRange(ctx, input.UserID, start, end, limit)
	if err != nil {
		lFunc.Errorf("could not read telemetry for user %d: %s", input.UserID, err)
		return nil, fmt.Errorf("%w: %s", errs.ErrTimeSeriesUnavailable, err)
	}

	total, err := svc.telemetryStorage.CountUserPoints(ctx, input.UserID, start, end)
	if err != nil {
		lFunc.Warnf("could not count telemetry for user %d: %s", input.UserID, err)
		total = len(results)
	}

	return &GetUserTelemetryOutput{
		UserID:  input.UserID,
		Total:   total,
		Results: results,
	}, nil
}

func (svc *TelemetryServiceBackend) DeleteTelemetry(ctx context.Context, input DeleteTelemetryInput) (*DeleteTelemetryOutput, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveDevice(ctx, lFunc, input.DeviceID, input.APIKey)
	if err != nil {
		return nil, err
	}

	// Deletion bounds are strict instants. The lenient range grammar stays
	// confined to read queries where a bad expression cannot destroy data.
	start, err := helpers.ParseSubmissionTimestamp(input.StartTime)
	if err != nil {
		lFunc.Errorf("rejecting delete for device %d: %s", device.DeviceID, err)
		return nil, errs.ErrInvalidTimestamp
	}
	end, err := helpers.ParseSubmissionTimestamp(input.EndTime)
	if err != nil {
		lFunc.Errorf("rejecting delete for device %d: %s", device.DeviceID, err)
		return nil, errs.ErrInvalidTimestamp
	}
	if start.After(end) {
		lFunc.Errorf("delete window for device %d starts after it ends", device.DeviceID)
		return nil, errs.ErrValidateBadRequest
	}

	deleted, err := svc.telemetryStorage.DeleteRange(ctx, device.DeviceID, start, end)
	if err != nil {
		lFunc.Errorf("could not delete telemetry for device %d: %s", device.DeviceID, err)
		return nil, fmt.Errorf("%w: %s", errs.ErrTimeSeriesUnavailable, err)
	}

	// The latest snapshot may now describe deleted points. Presence and
	// API key entries are untouched; the device is still the device.
	svc.deviceCache.InvalidateLatest(ctx, device.DeviceID)

	_, err = svc.eventsStorage.Append(ctx, &models.AuditEvent{
		DeviceID:  device.DeviceID,
		UserID:    device.UserID,
		EventType: models.EventTelemetryDeleted,
		Details: map[string]interface{}{
			"start_time": start.Format(time.RFC3339),
			"end_time":   end.Format(time.RFC3339),
		},
	})
	if err != nil {
		lFunc.Warnf("could not append audit event for device %d: %s", device.DeviceID, err)
	}

	return &DeleteTelemetryOutput{
		DeviceID: device.DeviceID,
		Deleted:  deleted,
		Start:    start,
		End:      end,
	}, nil
}

func (svc *TelemetryServiceBackend) GetDeviceStatus(ctx context.Context, input GetDeviceStatusInput) (*GetDeviceStatusOutput, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	// Resolution dispatches through the configured service chain so wrapping
	// middlewares observe it.
	device, err := svc.service.ResolveDeviceByAPIKey(ctx, ResolveDeviceByAPIKeyInput{APIKey: input.APIKey})
	if err != nil {
		return nil, err
	}
	if device.DeviceID != input.DeviceID {
		return nil, errs.ErrDeviceMismatch
	}

	// Presence and alerts are cache-derived and best effort. The identity
	// store's last-seen column backs up the cache when it has nothing.
	lastSeen := device.LastSeen
	if cached, hit := svc.deviceCache.LastSeen(ctx, device.DeviceID); hit {
		lastSeen = &cached
	}

	return &GetDeviceStatusOutput{
		DeviceID:     device.DeviceID,
		Name:         device.Name,
		DeviceType:   device.DeviceType,
		Status:       device.Status,
		Online:       svc.deviceCache.IsOnline(ctx, device.DeviceID),
		LastSeen:     lastSeen,
		RecentAlerts: svc.deviceCache.RecentAlerts(ctx, device.DeviceID, recentAlertCount),
	}, nil
}

func (svc *TelemetryServiceBackend) GetUserDevices(ctx context.Context, input GetUserDevicesInput) (*GetUserDevicesOutput, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveByAPIKey(ctx, lFunc, input.APIKey)
	if err != nil {
		return nil, err
	}
	if device.UserID != input.UserID {
		return nil, errs.ErrDeviceMismatch
	}

	devices, err := svc.identityStorage.SelectByUser(ctx, input.UserID)
	if err != nil {
		lFunc.Errorf("could not list devices for user %d: %s", input.UserID, err)
		return nil, fmt.Errorf("could not list devices: %s", err)
	}

	// One presence read for the whole fleet instead of a round trip per
	// device.
	online := make(map[int]bool)
	for _, id := range svc.deviceCache.OnlineDevices(ctx) {
		online[id] = true
	}

	entries := make([]UserDeviceEntry, 0, len(devices))
	for _, dev := range devices {
		entries = append(entries, UserDeviceEntry{
			DeviceID:   dev.DeviceID,
			Name:       dev.Name,
			DeviceType: dev.DeviceType,
			Status:     dev.Status,
			Online:     online[dev.DeviceID],
		})
	}

	return &GetUserDevicesOutput{
		UserID:  input.UserID,
		Devices: entries,
	}, nil
}

func (svc *TelemetryServiceBackend) GetAuditTrail(ctx context.Context, input GetAuditTrailInput) (*GetAuditTrailOutput, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveByAPIKey(ctx, lFunc, input.APIKey)
	if err != nil {
		return nil, err
	}

	limit := clampEventLimit(input.Limit)

	var events []models.AuditEvent
	switch {
	case input.DeviceID != 0:
		if device.DeviceID != input.DeviceID {
			return nil, errs.ErrDeviceMismatch
		}
		events, err = svc.eventsStorage.SelectByDevice(ctx, input.DeviceID, limit)
	case input.EventType != "":
		events, err = svc.eventsStorage.SelectByType(ctx, models.EventType(input.EventType), limit)
	case input.Start != "" || input.End != "":
		now := time.Now().UTC()
		start := helpers.ParseRangeTime(input.Start, now)
		end := helpers.ParseRangeTime(input.End, now)
		events, err = svc.eventsStorage.SelectByTimeRange(ctx, start, end, limit)
	default:
		events, err = svc.eventsStorage.SelectByUser(ctx, device.UserID, limit)
	}
	if err != nil {
		lFunc.Errorf("could not query event log: %s", err)
		return nil, fmt.Errorf("%w: %s", errs.ErrDocumentStoreUnavailable, err)
	}

	// Type and time-range queries span every device; keep only the
	// caller's own events.
	filtered := make([]models.AuditEvent, 0, len(events))
	for _, ev := range events {
		if ev.UserID == device.UserID {
			filtered = append(filtered, ev)
		}
	}

	return &GetAuditTrailOutput{
		UserID: device.UserID,
		Events: filtered,
	}, nil
}

func (svc *TelemetryServiceBackend) GetDeviceConfig(ctx context.Context, input GetDeviceConfigInput) (*models.DeviceConfig, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveDevice(ctx, lFunc, input.DeviceID, input.APIKey)
	if err != nil {
		return nil, err
	}

	exists, config, err := svc.configsStorage.SelectByDevice(ctx, device.DeviceID)
	if err != nil {
		lFunc.Errorf("could not read config for device %d: %s", device.DeviceID, err)
		return nil, fmt.Errorf("%w: %s", errs.ErrDocumentStoreUnavailable, err)
	}
	if !exists {
		return nil, errs.ErrConfigNotFound
	}

	return config, nil
}

func (svc *TelemetryServiceBackend) UpdateDeviceConfig(ctx context.Context, input UpdateDeviceConfigInput) (*models.DeviceConfig, error) {
	lFunc := helpers.ConfigureLogger(ctx, svc.logger)

	err := telemetryValidate.Struct(input)
	if err != nil {
		lFunc.Errorf("struct validation error: %s", err)
		return nil, errs.ErrValidateBadRequest
	}

	device, err := svc.resolveDevice(ctx, lFunc, input.DeviceID, input.APIKey)
	if err != nil {
		return nil, err
	}

	config, err := svc.configsStorage.Upsert(ctx, &models.DeviceConfig{
		DeviceID: device.DeviceID,
		Config:   input.Config,
		Updated:  time.Now().UTC(),
	})
	if err != nil {
		lFunc.Errorf("could not store config for device %d: %s", device.DeviceID, err)
		return nil, fmt.Errorf("%w: %s", errs.ErrDocumentStoreUnavailable, err)
	}

	_, err = svc.eventsStorage.Append(ctx, &models.AuditEvent{
		DeviceID:  device.DeviceID,
		UserID:    device.UserID,
		EventType: models.EventConfigUpdated,
		Details: map[string]interface{}{
			"keys": configKeys(input.Config),
		},
	})
	if err != nil {
		lFunc.Warnf("could not append audit event for device %d: %s", device.DeviceID, err)
	}

	return config, nil
}

func (svc *TelemetryServiceBackend) GetStatus(ctx context.Context, input GetStatusInput) (*models.BackendStatus, error) {
	return &models.BackendStatus{
		TimeSeries: svc.telemetryStorage.IsAvailable(ctx),
		Identity:   svc.identityStorage.IsAvailable(ctx),
		Cache:      svc.deviceCache.IsAvailable(ctx),
		Documents:  svc.eventsStorage.IsAvailable(ctx),
	}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRangeLimit
	}
	if limit > MaxRangeLimit {
		return MaxRangeLimit
	}
	return limit
}

func clampEventLimit(limit int) int {
	if limit <= 0 {
		return DefaultEventLimit
	}
	if limit > MaxEventLimit {
		return MaxEventLimit
	}
	return limit
}

func configKeys(config map[string]interface{}) []string {
	keys := make([]string, 0, len(config))
	for key := range config {
		keys = append(keys, key)
	}
	return keys
}
