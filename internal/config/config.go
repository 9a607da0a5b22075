package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Tracing      TracingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"hiring-workflow"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"8080"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// PostgresConfig holds DB connection values. An empty DSN selects the in-memory store,
// which is then loaded from SeedFile.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	SeedFile       string `env:"MEMORY_SEED_FILE"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	MigrationsDir  string `env:"POSTGRES_MIGRATIONS_DIR" envDefault:"migrations"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines how upstream access tokens are verified.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" envDefault:"dev-secret"`
}

// Notification channels.
const (
	ChannelLog     = "log"
	ChannelWebhook = "webhook"
	ChannelRedis   = "redis"
)

// NotificationConfig controls the applicant status email pipeline.
type NotificationConfig struct {
	AutoNotify         bool   `env:"NOTIFY_AUTO" envDefault:"true"`
	Channel            string `env:"NOTIFY_CHANNEL" envDefault:"log"`
	EmailFrom          string `env:"NOTIFY_EMAIL_FROM" envDefault:"noreply@example.com"`
	WebhookURL         string `env:"NOTIFY_WEBHOOK_URL"`
	Stream             string `env:"NOTIFY_REDIS_STREAM" envDefault:"notifications:application-status"`
	Workers            int    `env:"NOTIFY_WORKERS" envDefault:"2"`
	QueueSize          int    `env:"NOTIFY_QUEUE_SIZE" envDefault:"128"`
	SendTimeoutSeconds int    `env:"NOTIFY_SEND_TIMEOUT_SECONDS" envDefault:"10"`
}

// TracingConfig configures the OTLP/HTTP exporter. An empty endpoint disables export;
// the URL scheme selects TLS.
type TracingConfig struct {
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLE_RATIO" envDefault:"1"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Notification.Channel {
	case ChannelLog:
	case ChannelWebhook:
		if c.Notification.WebhookURL == "" {
			return fmt.Errorf("NOTIFY_WEBHOOK_URL is required for the webhook channel")
		}
	case ChannelRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis channel")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_CHANNEL %q", c.Notification.Channel)
	}
	if c.Postgres.DSN == "" && c.Postgres.SeedFile == "" {
		return fmt.Errorf("MEMORY_SEED_FILE is required when POSTGRES_DSN is empty")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLE_RATIO must be within [0,1]")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SendTimeout bounds a single notifier call.
func (n NotificationConfig) SendTimeout() time.Duration {
	if n.SendTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.SendTimeoutSeconds) * time.Second
}
