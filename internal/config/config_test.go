package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WEATHERAPI_API_KEY", "NEXT_PUBLIC_WEATHER_API_KEY", "WEATHERAPI_BASE_URL",
		"HTTP_TIMEOUT", "FETCH_MAX_RETRIES", "FETCH_BREAKER", "SESSION_MAX_COUNT", "SESSION_MAX_AGE",
		"REFRESH_INTERVAL", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WeatherAPIBaseURL != "https://api.weatherapi.com" {
		t.Errorf("unexpected base url %q", cfg.WeatherAPIBaseURL)
	}
	if cfg.HTTPTimeout != 0 || cfg.FetchMaxRetries != 0 || cfg.RefreshInterval != 0 || cfg.FetchBreaker {
		t.Errorf("expected no timeout, retries, breaker or refresh by default: %+v", cfg)
	}
	if cfg.SessionMaxCount != 1000 || cfg.SessionMaxAge != time.Hour {
		t.Errorf("unexpected session retention: %+v", cfg)
	}
	if cfg.Port != "8080" {
		t.Errorf("unexpected port %q", cfg.Port)
	}
}

func TestLoadAPIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXT_PUBLIC_WEATHER_API_KEY", "legacy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WeatherAPIKey != "legacy" {
		t.Fatalf("expected fallback key, got %q", cfg.WeatherAPIKey)
	}

	t.Setenv("WEATHERAPI_API_KEY", "primary")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WeatherAPIKey != "primary" {
		t.Fatalf("expected primary key, got %q", cfg.WeatherAPIKey)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_TIMEOUT":        "soon",
		"SESSION_MAX_AGE":     "-5m",
		"REFRESH_INTERVAL":    "often",
		"FETCH_MAX_RETRIES":   "50",
		"FETCH_BREAKER":       "sometimes",
		"PORT":                "http",
		"WEATHERAPI_BASE_URL": "not a url",
	}

	for key, val := range cases {
		clearEnv(t)
		t.Setenv(key, val)
		if _, err := Load(); err == nil {
			t.Errorf("%s=%q: expected error", key, val)
		}
	}
}

func TestLoadFetchBreaker(t *testing.T) {
	clearEnv(t)
	t.Setenv("FETCH_BREAKER", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.FetchBreaker {
		t.Fatal("expected breaker to be enabled")
	}
}
