package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"DB_USER":    "reddit",
		"JWT_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 60, cfg.Redis.RateLimitPerMinute)
	assert.Equal(t,
		"host=localhost user=reddit password= dbname=postgres port=5432 sslmode=disable TimeZone=UTC",
		cfg.Database.DSN())
}

func TestFromViperOrigins(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"STORE":           "memory",
		"JWT_SECRET":      "secret",
		"ALLOWED_ORIGINS": "http://localhost:3000, https://example.com,",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.AllowedOrigins)
}

func TestFromViperValidation(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		msg    string
	}{
		{"postgres without user", map[string]any{"JWT_SECRET": "s"}, "DB_USER is required"},
		{"missing secret", map[string]any{"STORE": "memory"}, "JWT_SECRET is required"},
		{"unknown store", map[string]any{"STORE": "mongo", "JWT_SECRET": "s"}, `unsupported STORE "mongo"`},
		{"no origins", map[string]any{"STORE": "memory", "JWT_SECRET": "s", "ALLOWED_ORIGINS": " , "}, "ALLOWED_ORIGINS cannot be empty"},
		{"negative rate limit", map[string]any{"STORE": "memory", "JWT_SECRET": "s", "RATE_LIMIT_PER_MINUTE": -1}, "cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.values))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
