package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the service.
type Config struct {
	Port               string
	TravelpayoutsURL   string
	TravelpayoutsToken string
	UpstreamTimeout    time.Duration
	CORSOrigins        []string
	AirportsCSV        string
}

// ErrMissingToken is returned when no upstream access token is configured.
var ErrMissingToken = errors.New("TRAVELPAYOUTS_TOKEN is required")

// Load reads configuration from the environment.
// Outside production a .env file in the working directory is loaded first;
// variables already set in the environment win.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	timeout, err := time.ParseDuration(getEnv("UPSTREAM_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, errors.New("invalid UPSTREAM_TIMEOUT: must be positive")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "10000"),
		TravelpayoutsURL:   getEnv("TRAVELPAYOUTS_URL", "https://api.travelpayouts.com"),
		TravelpayoutsToken: strings.TrimSpace(os.Getenv("TRAVELPAYOUTS_TOKEN")),
		UpstreamTimeout:    timeout,
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "*")),
		AirportsCSV:        os.Getenv("AIRPORTS_CSV"),
	}

	if cfg.TravelpayoutsToken == "" {
		return nil, ErrMissingToken
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// getEnv gets an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
