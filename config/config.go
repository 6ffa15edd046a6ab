package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Chat    ChatConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// SessionConfig bounds poll parameters.
type SessionConfig struct {
	DefaultTimeLimitSec int // applied when a poll request omits the limit
	MaxTimeLimitSec     int
	MaxOptions          int
}

// ChatConfig bounds chat messages.
type ChatConfig struct {
	MaxMessageLen int
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Session: SessionConfig{
			DefaultTimeLimitSec: getEnvInt("DEFAULT_POLL_TIME_LIMIT_SEC", 60),
			MaxTimeLimitSec:     getEnvInt("MAX_POLL_TIME_LIMIT_SEC", 300),
			MaxOptions:          getEnvInt("MAX_POLL_OPTIONS", 10),
		},
		Chat: ChatConfig{
			MaxMessageLen: getEnvInt("MAX_CHAT_MESSAGE_LEN", 500),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
