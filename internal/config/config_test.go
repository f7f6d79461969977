package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "dev"},
		Auth: AuthConfig{
			SecretKey:     "0123456789abcdef0123456789abcdef",
			TokenFormat:   "jwt",
			TokenDuration: time.Hour,
			BcryptCost:    10,
		},
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.True(t, cfg.Server.IsDevelopment())
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.Server.TrustedOrigins)
	require.Equal(t, 25, cfg.Database.MaxOpenConns)
	require.False(t, cfg.Database.AutoMigrate)
	require.Equal(t, "jwt", cfg.Auth.TokenFormat)
	require.Equal(t, time.Hour, cfg.Auth.TokenDuration)
	require.Equal(t, "users-api", cfg.Telemetry.ServiceName)
	require.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("TOKEN_FORMAT", "paseto")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TRUSTED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "paseto", cfg.Auth.TokenFormat)
	require.Equal(t, 15*time.Minute, cfg.Auth.TokenDuration)
	require.False(t, cfg.Server.IsDevelopment())
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.TrustedOrigins)
	require.True(t, cfg.Database.AutoMigrate)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.ErrorContains(t, err, "SECRET_KEY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"paseto with 32 byte key", func(c *Config) { c.Auth.TokenFormat = "paseto" }, ""},
		{"paseto with short key", func(c *Config) {
			c.Auth.TokenFormat = "paseto"
			c.Auth.SecretKey = "short"
		}, "exactly 32 bytes"},
		{"unknown format", func(c *Config) { c.Auth.TokenFormat = "saml" }, "TOKEN_FORMAT"},
		{"zero ttl", func(c *Config) { c.Auth.TokenDuration = 0 }, "TOKEN_TTL"},
		{"cost too low", func(c *Config) { c.Auth.BcryptCost = 1 }, "BCRYPT_COST"},
		{"cost too high", func(c *Config) { c.Auth.BcryptCost = 40 }, "BCRYPT_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConnectionString(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "app", Password: "pw", DBName: "users", SSLMode: "disable"}
	require.Equal(t, "host=db port=5432 user=app password=pw dbname=users sslmode=disable", db.ConnectionString())
}
