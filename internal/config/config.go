// Package config loads server configuration from the environment
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/gyeongmin0113/acid-rain/pkg/logger"
)

// Config carries every runtime setting of the server process
type Config struct {
	// Port is the TCP port for the line protocol
	Port int
	// WSPort is the port for the WebSocket gateway; zero disables it
	WSPort int
	// DataDir holds the leaderboard tables and vocabulary files
	DataDir string
	// LogLevel is one of DEBUG, INFO, WARN, ERROR
	LogLevel string
	// LogDir enables file logging when non-empty
	LogDir string
}

// Load reads .env when present, then the environment, falling back to
// defaults for anything unset
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		logger.Server.Debug("Loaded configuration from .env")
	}

	return &Config{
		Port:     getEnvInt("PORT", 12345),
		WSPort:   getEnvInt("WS_PORT", 0),
		DataDir:  getEnv("DATA_DIR", "data"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogDir:   getEnv("LOG_DIR", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Server.Warn("Invalid value for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
