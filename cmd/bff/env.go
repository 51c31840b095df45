package main

import "os"

// Environment variables read at startup.
const (
	EnvConfigPath = "BFF_CONFIG_PATH"
	EnvLogLevel   = "BFF_LOG_LEVEL"
	EnvLogFormat  = "BFF_LOG_FORMAT"
)

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
