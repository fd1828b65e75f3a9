package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string

	// Remote storage (cloud drive)
	RemoteStorageEnabled bool
	DriveRootFolderID    string
	DriveCredentialsFile string

	// Local storage
	LocalStorageDir string
	MaxUploadBytes  int64

	// File logging; empty disables it and logs go to stdout only
	LogDir string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),

		RemoteStorageEnabled: getEnv("REMOTE_STORAGE_ENABLED", "false") == "true",
		DriveRootFolderID:    getEnv("DRIVE_ROOT_FOLDER_ID", ""),
		DriveCredentialsFile: getEnv("DRIVE_CREDENTIALS_FILE", ""),

		LocalStorageDir: getEnv("LOCAL_STORAGE_DIR", "./data/attachments"),
		MaxUploadBytes:  getInt64Env("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),

		LogDir: getEnv("LOG_DIR", ""),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
