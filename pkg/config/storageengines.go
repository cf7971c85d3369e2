package config

// CassandraConfig describes the connection to the time-series keyspace. The
// keyspace and its tables are expected to exist already: schema bootstrapping
// is handled by the deployment, not by this service.
type CassandraConfig struct {
	LogLevel LogLevel `mapstructure:"log_level"`
	Hosts    []string `mapstructure:"hosts"`
	Port     int      `mapstructure:"port"`
	Keyspace string   `mapstructure:"keyspace"`
	Username string   `mapstructure:"username"`
	Password Password `mapstructure:"password"`
}

type PostgresConfig struct {
	LogLevel LogLevel `mapstructure:"log_level"`
	Hostname string   `mapstructure:"hostname"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password Password `mapstructure:"password"`
	Database string   `mapstructure:"database"`
}

type RedisConfig struct {
	LogLevel LogLevel `mapstructure:"log_level"`
	Hostname string   `mapstructure:"hostname"`
	Port     int      `mapstructure:"port"`
	Password Password `mapstructure:"password"`
	DB       int      `mapstructure:"db"`
}

type CouchDBConfig struct {
	LogLevel LogLevel `mapstructure:"log_level"`
	Protocol string   `mapstructure:"protocol"`
	Hostname string   `mapstructure:"hostname"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password Password `mapstructure:"password"`
}
