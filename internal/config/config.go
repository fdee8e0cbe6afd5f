package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	DatabaseURL     string
	LogLevel        string
	NatsURL         string
	NatsToken       string
	ClioClientID    string
	ClioSecret      string
	ClioRedirectURI string
	ClioBaseURL     string
	ClioAuthURL     string
	ClioTokenURL    string
	HTTPTimeout     time.Duration
}

func Load() Config {
	// .env is optional; deployments normally set the environment directly.
	_ = godotenv.Load()

	return Config{
		Port:            envInt("PORT", 8780),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		ClioClientID:    envStr("CLIO_CLIENT_ID", ""),
		ClioSecret:      envStr("CLIO_CLIENT_SECRET", ""),
		ClioRedirectURI: envStr("CLIO_REDIRECT_URI", ""),
		ClioBaseURL:     envStr("CLIO_BASE_URL", "https://app.clio.com/api/v4"),
		ClioAuthURL:     envStr("CLIO_AUTH_URL", "https://app.clio.com/oauth/authorize"),
		ClioTokenURL:    envStr("CLIO_TOKEN_URL", "https://app.clio.com/oauth/token"),
		HTTPTimeout:     envDuration("HTTP_TIMEOUT", 30*time.Second),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
