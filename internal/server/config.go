package server

import (
	"os"
	"strconv"
	"time"
)

// Config holds the HTTP service settings.
type Config struct {
	Addr            string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":1290",
		MaxBodyBytes:    32 << 20, // 32 MiB request ceiling
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadFromEnv reads overrides from JANITOR_* environment variables.
func LoadFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("JANITOR_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("JANITOR_MAX_BODY_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			cfg.MaxBodyBytes = parsed
		}
	}
	if v := os.Getenv("JANITOR_READ_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.ReadTimeout = parsed
		}
	}
	if v := os.Getenv("JANITOR_WRITE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.WriteTimeout = parsed
		}
	}
	return cfg
}
