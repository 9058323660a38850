package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	UpstreamURL     string
	UpstreamToken   string
	UpstreamTimeout time.Duration
	DataDir         string
	DatabaseURL     string
	RedisURL        string
	CORSOrigin      string
	WebhookToken    string
	PurgeURL        string
	PurgeToken      string
}

func Load() Config {
	return Config{
		Addr:            getenv("API_ADDR", ":8585"),
		UpstreamURL:     getenv("WAYPOST_UPSTREAM_URL", "http://localhost:4000/graphql"),
		UpstreamToken:   getenv("WAYPOST_UPSTREAM_TOKEN", ""),
		UpstreamTimeout: time.Duration(getenvInt("WAYPOST_UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,
		DataDir:         getenv("WAYPOST_DATA_DIR", "./data"),
		// Postgres/Redis - empty by default, file-backed persistence when unset
		DatabaseURL:  getenv("DATABASE_URL", ""),
		RedisURL:     getenv("REDIS_URL", ""),
		CORSOrigin:   getenv("WAYPOST_CORS_ORIGIN", "*"),
		WebhookToken: getenv("WAYPOST_WEBHOOK_TOKEN", "waypost-webhook-token"),
		PurgeURL:     getenv("WAYPOST_PURGE_URL", ""),
		PurgeToken:   getenv("WAYPOST_PURGE_TOKEN", ""),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
