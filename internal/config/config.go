package config

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultPort               = "8080"
	defaultInsightTTL         = 30 * 24 * time.Hour
	defaultSessionIdleTimeout = 2 * time.Hour
)

type Config struct {
	ProjectID          string
	Region             string
	LogLevel           string
	VertexModel        string
	Port               string
	InsightTTL         time.Duration
	SessionIdleTimeout time.Duration
}

func New() *Config {
	return &Config{
		ProjectID:          os.Getenv("PROJECTID"),
		Region:             os.Getenv("REGION"),
		LogLevel:           os.Getenv("LOGLEVEL"),
		VertexModel:        os.Getenv("VERTEXMODEL"),
		Port:               getString(os.Getenv("PORT"), defaultPort),
		InsightTTL:         getDuration(os.Getenv("INSIGHTTTL"), defaultInsightTTL),
		SessionIdleTimeout: getDuration(os.Getenv("SESSIONIDLETIMEOUT"), defaultSessionIdleTimeout),
	}
}

func getString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("90m") or a bare number of hours.
func getDuration(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if h, err := strconv.Atoi(v); err == nil && h > 0 {
		return time.Duration(h) * time.Hour
	}
	return fallback
}
