package config

import (
	"log/slog"
	"os"
)

type Config struct {
	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory", "sqlite" or "firestore"
	SQLitePath     string

	UseMockLLM bool // true = no Vertex call, deterministic replies
	LogLevel   slog.Level
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads all env vars and builds the config.
func Load() *Config {
	return &Config{
		Port: getEnv("COMPANION_PORT", "8080"),

		GCPProjectID: getEnv("COMPANION_GCP_PROJECT", ""),
		GCPLocation:  getEnv("COMPANION_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("COMPANION_MODEL_NAME", "gemini-2.5-flash"),

		StorageBackend: getEnv("COMPANION_STORAGE_BACKEND", "memory"),
		SQLitePath:     getEnv("COMPANION_SQLITE_PATH", "companion.db"),

		UseMockLLM: getBoolEnv("COMPANION_USE_MOCK_LLM", true),
		LogLevel:   parseLogLevel(getEnv("COMPANION_LOG_LEVEL", "info")),
	}
}
