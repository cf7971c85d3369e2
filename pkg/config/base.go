package config

type Password string

func (p Password) MarshalText() ([]byte, error) {
	return []byte("*************"), nil
}

func (p *Password) UnmarshalText(text []byte) (err error) {
	*p = Password(text)
	return nil
}

type LogLevel string

const (
	Info  LogLevel = "info"
	Debug LogLevel = "debug"
	Trace LogLevel = "trace"
	None  LogLevel = "none"
)

type Logging struct {
	Level LogLevel `mapstructure:"level"`
}

// HttpServer is the configuration for the HTTP server
type HttpServer struct {
	LogLevel           LogLevel `mapstructure:"log_level"`
	HealthCheckLogging bool     `mapstructure:"health_check"`
	ListenAddress      string   `mapstructure:"listen_address"`
	Port               int      `mapstructure:"port"`
}
