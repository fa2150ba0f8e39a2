// Package config handles environment variable loading for ports, directories, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// HTTP server port for the control plane
	HTTPPort int

	// Default output directory for captures without a session
	CaptureDir string

	// Root directory for session storage
	SessionDir string

	// Root directory for calibration frame sets
	CalibrationDir string

	// Camera driver to use ("sim" is the only built-in)
	CameraDriver string

	// How long terminal jobs stay queryable before eviction
	JobRetention time.Duration

	// Poll interval of the pause idle-wait loop
	PausePollInterval time.Duration

	// Requests per second allowed on the API; 0 disables limiting
	RateLimit float64

	// Burst size for the rate limiter
	RateLimitBurst int

	// OTLP collector endpoint for tracing; empty disables tracing
	OTELEndpoint string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	// Missing .env is not an error; env vars win over file values.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:          6161,
		CaptureDir:        "captures/default",
		SessionDir:        "sessions",
		CalibrationDir:    "calibration_frames",
		CameraDriver:      "sim",
		JobRetention:      5 * time.Minute,
		PausePollInterval: 100 * time.Millisecond,
		RateLimit:         0,
		RateLimitBurst:    10,
		OTELEndpoint:      os.Getenv("OTEL_ENDPOINT"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.HTTPPort = p
	}

	if v := os.Getenv("CAPTURE_DIR"); v != "" {
		cfg.CaptureDir = v
	}

	if v := os.Getenv("SESSION_DIR"); v != "" {
		cfg.SessionDir = v
	}

	if v := os.Getenv("CALIBRATION_DIR"); v != "" {
		cfg.CalibrationDir = v
	}

	if v := os.Getenv("CAMERA_DRIVER"); v != "" {
		cfg.CameraDriver = v
	}

	if v := os.Getenv("JOB_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JOB_RETENTION: %w", err)
		}
		cfg.JobRetention = d
	}

	if v := os.Getenv("PAUSE_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PAUSE_POLL_INTERVAL: %w", err)
		}
		cfg.PausePollInterval = d
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = f
	}

	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = b
	}

	return cfg, nil
}
