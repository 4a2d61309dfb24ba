package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment       string
	HTTPPort          string
	DatabasePath      string
	ExportDir         string
	JWTSecret         string
	NotifyURL         string
	AuditFailedLogins bool
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:       getEnv("DOCVAULT_ENV", "development"),
		HTTPPort:          getEnv("DOCVAULT_HTTP_PORT", "8080"),
		DatabasePath:      getEnv("DOCVAULT_DB_PATH", filepath.Join("data", "docvault.db")),
		ExportDir:         getEnv("DOCVAULT_EXPORT_DIR", filepath.Join("data", "exports")),
		JWTSecret:         getEnv("DOCVAULT_JWT_SECRET", ""),
		NotifyURL:         getEnv("DOCVAULT_NOTIFY_URL", ""),
		AuditFailedLogins: getEnvBool("DOCVAULT_AUDIT_FAILED_LOGINS", false),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure export directory: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
