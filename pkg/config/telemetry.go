package config

// TelemetryBackendConfig is the root configuration for the telemetry service.
type TelemetryBackendConfig struct {
	Logs   Logging    `mapstructure:"logs"`
	Server HttpServer `mapstructure:"server"`

	IdentityStorage   PostgresConfig  `mapstructure:"identity_storage"`
	TimeSeriesStorage CassandraConfig `mapstructure:"timeseries_storage"`
	DocumentStorage   CouchDBConfig   `mapstructure:"document_storage"`
	Cache             RedisConfig     `mapstructure:"cache"`

	PublisherEventBus EventBusEngine `mapstructure:"publisher_event_bus"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// RateLimitConfig bounds the request rate per API key on the telemetry
// endpoints. WindowSeconds is also the TTL of the underlying counter.
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxRequests   int  `mapstructure:"max_requests"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

// RetentionConfig drives the periodic sweep that hard-deletes telemetry older
// than MaxAgeDays. Disabled unless a cron schedule is set.
type RetentionConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}
