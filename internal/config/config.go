package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	pkgconfig "github.com/ny-kanto/mall-api/pkg/config"
	"github.com/ny-kanto/mall-api/pkg/database"
	"github.com/ny-kanto/mall-api/pkg/pagination"
	"github.com/ny-kanto/mall-api/pkg/tracing"
)

// Config holds all configuration for the mall API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"3000"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"mall"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"mall_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"mall"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (revoked token store)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"true"`

	// Auth
	JWTSecret string `env:"JWT_SECRET"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Write endpoints are throttled per caller; 0 disables the limit.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Opening hours are evaluated in the mall's local time.
	MallTimezone string `env:"MALL_TIMEZONE" envDefault:"Indian/Antananarivo"`

	// Listing windows
	CatalogDefaultLimit int `env:"CATALOG_DEFAULT_LIMIT" envDefault:"12"`
	CatalogMaxLimit     int `env:"CATALOG_MAX_LIMIT" envDefault:"100"`
	ReviewDefaultLimit  int `env:"REVIEW_DEFAULT_LIMIT" envDefault:"10"`
	ReviewMaxLimit      int `env:"REVIEW_MAX_LIMIT" envDefault:"50"`
}

// Load reads configuration from a local .env file, when present, and the
// environment.
func Load() (*Config, error) {
	cfg, err := pkgconfig.Load[Config](".env")
	if err != nil {
		return nil, fmt.Errorf("load mall config: %w", err)
	}
	return cfg, nil
}

// Validate checks the constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if err := checkLimits("CATALOG", c.CatalogDefaultLimit, c.CatalogMaxLimit); err != nil {
		return err
	}
	if err := checkLimits("REVIEW", c.ReviewDefaultLimit, c.ReviewMaxLimit); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.MallTimezone); err != nil {
		return fmt.Errorf("MALL_TIMEZONE %q: %w", c.MallTimezone, err)
	}
	return nil
}

func checkLimits(prefix string, def, max int) error {
	if def < 1 || max < 1 {
		return fmt.Errorf("%s_DEFAULT_LIMIT and %s_MAX_LIMIT must be positive", prefix, prefix)
	}
	if def > max {
		return fmt.Errorf("%s_DEFAULT_LIMIT (%d) exceeds %s_MAX_LIMIT (%d)", prefix, def, prefix, max)
	}
	return nil
}

// Postgres is the connection pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis is the client configuration of the revoked token store.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Tracing is the OpenTelemetry exporter configuration for service.
func (c *Config) Tracing(service, version string) tracing.Config {
	return tracing.Config{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}

// SlowQueryThreshold is zero when slow query logging is off.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(max(c.SlowQueryThresholdMs, 0)) * time.Millisecond
}

// Location returns the mall's time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.MallTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CatalogBounds is the page window of shop and product listings.
func (c *Config) CatalogBounds() pagination.Bounds {
	return pagination.Bounds{DefaultLimit: c.CatalogDefaultLimit, MaxLimit: c.CatalogMaxLimit}
}

// ReviewBounds is the page window of review listings.
func (c *Config) ReviewBounds() pagination.Bounds {
	return pagination.Bounds{DefaultLimit: c.ReviewDefaultLimit, MaxLimit: c.ReviewMaxLimit}
}
