package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type AppConfig struct {
	WeatherAPIKey     string
	WeatherAPIBaseURL string `validate:"required,url"`

	// HTTPTimeout bounds each outbound call (0 = rely on the transport).
	HTTPTimeout time.Duration `validate:"gte=0"`
	// FetchMaxRetries is the number of extra attempts after a 5xx/transport failure.
	FetchMaxRetries int `validate:"gte=0,lte=10"`
	// FetchBreaker lets a circuit breaker reject fetches after repeated failures.
	FetchBreaker bool

	// Widget session retention.
	SessionMaxCount int           `validate:"gte=0"` // 0 = unlimited
	SessionMaxAge   time.Duration `validate:"gte=0"` // 0 = never expire

	// RefreshInterval re-runs each session's last search (0 = disabled).
	RefreshInterval time.Duration `validate:"gte=0"`

	Port string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = getenvDefault("WEATHERAPI_API_KEY", os.Getenv("NEXT_PUBLIC_WEATHER_API_KEY"))
	cfg.WeatherAPIBaseURL = getenvDefault("WEATHERAPI_BASE_URL", "https://api.weatherapi.com")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0"); err != nil {
		return nil, err
	}
	cfg.FetchMaxRetries = getenvInt("FETCH_MAX_RETRIES", 0)
	if cfg.FetchBreaker, err = getenvBool("FETCH_BREAKER", false); err != nil {
		return nil, err
	}

	cfg.SessionMaxCount = getenvInt("SESSION_MAX_COUNT", 1000)
	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", "1h"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
