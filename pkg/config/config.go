package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration
type Config struct {
	Environment        string        `env:"ENVIRONMENT" envDefault:"development"`
	ServerPort         int           `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL           string        `env:"REDIS_URL"`                    // empty disables the Redis token cache
	OTLPEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"` // empty disables tracing
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	TokenSweepInterval time.Duration `env:"TOKEN_SWEEP_INTERVAL" envDefault:"10m"`
	RateLimitPerMin    int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000"`

	// TaskAdminAll switches the task access policy from owner-only to
	// admin-sees-all: staff and superusers get an unrestricted view of
	// every task while regular users stay scoped to their own rows.
	TaskAdminAll bool `env:"POLICY_TASK_ADMIN_ALL" envDefault:"false"`

	Database Database `envPrefix:"DB_"`
}

// Database contains database connection parameters
type Database struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"interntrack"`
	Password string `env:"PASSWORD" envDefault:"dev"`
	Name     string `env:"NAME" envDefault:"interntrack"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("invalid SERVER_PORT: %d", cfg.ServerPort)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %s", cfg.TokenTTL)
	}

	return &cfg, nil
}
