// Package config provides 12-factor configuration management for the desktop backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Storage: Desktop state database path and compression
//   - Desktop: Default window size, drag commit interval, branch cooldown
//   - Providers: Language model timeout and endpoint overrides
//   - Settings: Credential encryption passphrase and seed file
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - DESKTOP_DB_PATH, DESKTOP_STORE_COMPRESS
//   - WINDOW_WIDTH, WINDOW_HEIGHT, DRAG_COMMIT_INTERVAL, BRANCH_COOLDOWN
//   - PROVIDER_TIMEOUT, ANTHROPIC_BASE_URL, OPENAI_BASE_URL, DEEPSEEK_BASE_URL, GROQ_BASE_URL
//   - SETTINGS_PASSPHRASE, CREDENTIALS_FILE
package config
