package errs

import "errors"

var (
	ErrInvalidAPIKey  error = errors.New("invalid API key")
	ErrDeviceMismatch error = errors.New("API key does not belong to device")
	ErrDeviceNotFound error = errors.New("device not found")

	ErrValidateBadRequest error = errors.New("struct validation error")
	ErrInvalidTimestamp   error = errors.New("invalid ISO-8601 timestamp")

	ErrTelemetryNotFound        error = errors.New("no telemetry data found")
	ErrConfigNotFound           error = errors.New("no configuration stored for device")
	ErrTimeSeriesUnavailable    error = errors.New("time-series store unavailable")
	ErrDocumentStoreUnavailable error = errors.New("document store unavailable")
	ErrRateLimitExceeded        error = errors.New("rate limit exceeded")
)
