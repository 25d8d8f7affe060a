package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "PORT", "")
	setEnv(t, "ENV", "")
	setEnv(t, "LOG_LEVEL", "")
	setEnv(t, "RATE_LIMIT_RPM", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimitRPM)
	assert.True(t, cfg.SeedTrainings)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "PORT", "9090")
	setEnv(t, "ENV", "production")
	setEnv(t, "RATE_LIMIT_RPM", "30")
	setEnv(t, "SEED_TRAININGS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 30, cfg.RateLimitRPM)
	assert.False(t, cfg.SeedTrainings)
}

func TestLoad_InvalidEnv(t *testing.T) {
	setEnv(t, "ENV", "sandbox")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ENV must be")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid",
			config:  Config{Port: "8080", Env: "development", RateLimitRPM: 60},
			wantErr: false,
		},
		{
			name:    "non-numeric port",
			config:  Config{Port: "http", Env: "development", RateLimitRPM: 60},
			wantErr: true,
		},
		{
			name:    "zero rate limit",
			config:  Config{Port: "8080", Env: "development", RateLimitRPM: 0},
			wantErr: true,
		},
		{
			name:    "empty port",
			config:  Config{Port: "", Env: "development", RateLimitRPM: 60},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
