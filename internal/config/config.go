package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config stores runtime configuration for the chat client.
type Config struct {
	Server  ServerConfig
	Session SessionConfig
}

type ServerConfig struct {
	BaseURL    string
	StreamPath string
	AskPath    string
	HealthPath string
}

type SessionConfig struct {
	DialTimeout     time.Duration
	AskTimeout      time.Duration
	ResponseTimeout time.Duration
	EventBuffer     int
	ErrorFallback   string
}

// Load resolves configuration from environment variables and sensible
// defaults. A response timeout of zero keeps the historical behavior of
// waiting indefinitely for a terminating event.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			BaseURL:    envOrDefault("BLOGCHAT_API_BASE", "http://localhost:8005"),
			StreamPath: envOrDefault("BLOGCHAT_STREAM_PATH", "/ws/chat"),
			AskPath:    envOrDefault("BLOGCHAT_ASK_PATH", "/api/chat"),
			HealthPath: envOrDefault("BLOGCHAT_HEALTH_PATH", "/api/health"),
		},
		Session: SessionConfig{
			DialTimeout:     millis("BLOGCHAT_DIAL_TIMEOUT_MS", 10000),
			AskTimeout:      millis("BLOGCHAT_ASK_TIMEOUT_MS", 30000),
			ResponseTimeout: millis("BLOGCHAT_RESPONSE_TIMEOUT_MS", 0),
			EventBuffer:     envOrDefaultInt("BLOGCHAT_EVENT_BUFFER", 64),
			ErrorFallback:   strings.TrimSpace(os.Getenv("BLOGCHAT_ERROR_FALLBACK")),
		},
	}

	if cfg.Session.EventBuffer <= 0 {
		cfg.Session.EventBuffer = 64
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func millis(key string, fallback int) time.Duration {
	value := envOrDefaultInt(key, fallback)
	if value < 0 {
		value = fallback
	}
	return time.Duration(value) * time.Millisecond
}
