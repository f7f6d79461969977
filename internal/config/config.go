package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"APP_ENV" envDefault:"dev"` // dev or prod
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	TrustedOrigins  []string      `env:"TRUSTED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type DatabaseConfig struct {
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         string `env:"DB_PORT" envDefault:"5432"`
	User         string `env:"DB_USER" envDefault:"postgres"`
	Password     string `env:"DB_PASS" envDefault:"postgres"`
	DBName       string `env:"DB_NAME" envDefault:"users"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	AutoMigrate  bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

type AuthConfig struct {
	// Symmetric signing secret. Must be 32 bytes when TokenFormat is paseto.
	SecretKey     string        `env:"SECRET_KEY"`
	TokenFormat   string        `env:"TOKEN_FORMAT" envDefault:"jwt"`
	TokenDuration time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"users-api"`
}

// Load reads configuration from environment variables, after loading a .env
// file when one is present.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}

	switch c.Auth.TokenFormat {
	case "jwt":
	case "paseto":
		// PASETO v4.local keys are exactly 32 bytes
		if len(c.Auth.SecretKey) != 32 {
			return fmt.Errorf("SECRET_KEY must be exactly 32 bytes for paseto, got %d", len(c.Auth.SecretKey))
		}
	default:
		return fmt.Errorf("TOKEN_FORMAT must be jwt or paseto, got %q", c.Auth.TokenFormat)
	}

	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenDuration)
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}
