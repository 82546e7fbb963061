package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"*"}, cfg.Server.Origins)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Desktop config
	assert.Equal(t, "desktop.db", cfg.Storage.Path)
	assert.Equal(t, 360, cfg.Desktop.WindowWidth)
	assert.Equal(t, 480, cfg.Desktop.WindowHeight)
	assert.Equal(t, 16*time.Millisecond, cfg.Desktop.DragInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Desktop.BranchCooldown)
	assert.Equal(t, 120*time.Second, cfg.Providers.Timeout)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"CORS_ORIGINS":           "http://localhost:5173,app://desktop",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
		"DESKTOP_DB_PATH":        "/tmp/state.db",
		"DESKTOP_STORE_COMPRESS": "true",
		"WINDOW_WIDTH":           "400",
		"DRAG_COMMIT_INTERVAL":   "33ms",
		"BRANCH_COOLDOWN":        "250ms",
		"PROVIDER_TIMEOUT":       "30s",
		"GROQ_BASE_URL":          "http://localhost:9999/v1",
		"SETTINGS_PASSPHRASE":    "hunter2",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"http://localhost:5173", "app://desktop"}, cfg.Server.Origins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "/tmp/state.db", cfg.Storage.Path)
	assert.True(t, cfg.Storage.Compress)
	assert.Equal(t, 400, cfg.Desktop.WindowWidth)
	assert.Equal(t, 480, cfg.Desktop.WindowHeight)
	assert.Equal(t, 33*time.Millisecond, cfg.Desktop.DragInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.Desktop.BranchCooldown)
	assert.Equal(t, 30*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, "http://localhost:9999/v1", cfg.Providers.GroqBaseURL)
	assert.Empty(t, cfg.Providers.OpenAIBaseURL)
	assert.Equal(t, "hunter2", cfg.Settings.Passphrase)
}

func TestServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		host     string
		wantPort string
		wantHost string
	}{
		{
			name:     "default values",
			wantPort: "8000",
			wantHost: "0.0.0.0",
		},
		{
			name:     "custom port",
			port:     "9000",
			wantPort: "9000",
			wantHost: "0.0.0.0",
		},
		{
			name:     "custom port and host",
			port:     "3000",
			host:     "127.0.0.1",
			wantPort: "3000",
			wantHost: "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.port != "" {
				t.Setenv("PORT", tt.port)
			}
			if tt.host != "" {
				t.Setenv("HOST", tt.host)
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.Equal(t, tt.wantHost, cfg.Server.Host)
		})
	}
}

func TestLoadOrDefaultOnInvalidValue(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "lots")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
}
