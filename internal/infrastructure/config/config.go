package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Desktop   DesktopConfig
	Providers ProviderConfig
	Settings  SettingsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string   `envconfig:"PORT" default:"8000"`
	Host    string   `envconfig:"HOST" default:"0.0.0.0"`
	// Origins lists the desktop UI origins allowed cross-origin access.
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StorageConfig holds desktop state storage configuration.
type StorageConfig struct {
	Path     string `envconfig:"DESKTOP_DB_PATH" default:"desktop.db"`
	Compress bool   `envconfig:"DESKTOP_STORE_COMPRESS" default:"false"`
}

// DesktopConfig holds window behavior configuration.
type DesktopConfig struct {
	WindowWidth    int           `envconfig:"WINDOW_WIDTH" default:"360"`
	WindowHeight   int           `envconfig:"WINDOW_HEIGHT" default:"480"`
	DragInterval   time.Duration `envconfig:"DRAG_COMMIT_INTERVAL" default:"16ms"`
	BranchCooldown time.Duration `envconfig:"BRANCH_COOLDOWN" default:"100ms"`
}

// ProviderConfig holds language model provider configuration.
// Empty base URLs select each provider's public endpoint.
type ProviderConfig struct {
	Timeout          time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"120s"`
	AnthropicBaseURL string        `envconfig:"ANTHROPIC_BASE_URL"`
	OpenAIBaseURL    string        `envconfig:"OPENAI_BASE_URL"`
	DeepSeekBaseURL  string        `envconfig:"DEEPSEEK_BASE_URL"`
	GroqBaseURL      string        `envconfig:"GROQ_BASE_URL"`
}

// SettingsConfig holds credential store configuration.
type SettingsConfig struct {
	Passphrase      string `envconfig:"SETTINGS_PASSPHRASE"`
	CredentialsFile string `envconfig:"CREDENTIALS_FILE"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8000",
			Host:    "0.0.0.0",
			Origins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Storage: StorageConfig{
			Path: "desktop.db",
		},
		Desktop: DesktopConfig{
			WindowWidth:    360,
			WindowHeight:   480,
			DragInterval:   16 * time.Millisecond,
			BranchCooldown: 100 * time.Millisecond,
		},
		Providers: ProviderConfig{
			Timeout: 120 * time.Second,
		},
	}
}
