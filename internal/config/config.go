package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	GatewayBaseURL  string
	GatewayTimeout  time.Duration
	GuestStorePath  string
	RedisAddr       string
	GuestCartTTL    time.Duration
	SessionSecret   string
	SessionTTL      time.Duration
	SessionIdleTTL  time.Duration
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// FromEnv builds Config with defaults, overridden by environment variables.
// REDIS_ADDR switches guest cart persistence from the file store to Redis.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		GatewayBaseURL:  envOrDefault("GATEWAY_BASE_URL", "http://localhost:3000/api"),
		GatewayTimeout:  envDuration("GATEWAY_TIMEOUT_SECONDS", 10*time.Second),
		GuestStorePath:  envOrDefault("GUEST_STORE_PATH", "data/guest-carts"),
		RedisAddr:       envOrDefault("REDIS_ADDR", ""),
		GuestCartTTL:    envDuration("GUEST_CART_TTL_SECONDS", 30*24*time.Hour),
		SessionSecret:   envOrDefault("SESSION_SECRET", "dev-session-secret"),
		SessionTTL:      envDuration("SESSION_TTL_SECONDS", 3*time.Hour),
		SessionIdleTTL:  envDuration("SESSION_IDLE_TTL_SECONDS", time.Hour),
		CORSOrigins:     envList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
