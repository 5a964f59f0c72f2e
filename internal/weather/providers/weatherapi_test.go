package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/i474232898/weather-widget/internal/weather"
)

const londonBody = `{
	"location": {"name": "London", "country": "United Kingdom"},
	"current": {"temp_c": 22.5, "condition": {"text": "Partly cloudy", "code": 1003}}
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*WeatherAPIProvider, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	p := NewWeatherAPIProvider(srv.Client(), "test-key", WeatherAPIOptions{BaseURL: srv.URL})
	return p, &calls
}

func TestWeatherAPIFetchSuccess(t *testing.T) {
	p, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/current.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected key param, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "London" {
			t.Errorf("expected q=London, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonBody))
	})

	got, err := p.Fetch(context.Background(), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := weather.Reading{Temperature: 22.5, Condition: "Partly cloudy", Location: "London", Unit: weather.UnitCelsius}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Fatalf("expected exactly one request, got %d", n)
	}
}

func TestWeatherAPIEscapesQuery(t *testing.T) {
	var raw string
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		_, _ = w.Write([]byte(londonBody))
	})

	if _, err := p.Fetch(context.Background(), "São Paulo & co"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(raw, "q=S%C3%A3o+Paulo+%26+co") {
		t.Fatalf("query term not percent-encoded: %q", raw)
	}
}

func TestWeatherAPINonSuccessStatus(t *testing.T) {
	p, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
	})

	_, err := p.Fetch(context.Background(), "Atlantis")
	if !errors.Is(err, errUnexpected) {
		t.Fatalf("expected errUnexpected, got %v", err)
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", n)
	}
}

func TestWeatherAPIServerErrorNotRetriedByDefault(t *testing.T) {
	p, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := p.Fetch(context.Background(), "London")
	if !errors.Is(err, errServerError) {
		t.Fatalf("expected errServerError, got %v", err)
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestWeatherAPIRetriesWhenConfigured(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(londonBody))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "test-key", WeatherAPIOptions{BaseURL: srv.URL, MaxRetries: 1})
	if _, err := p.Fetch(context.Background(), "London"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}
}

func TestWeatherAPIClientErrorsDoNotTripBreaker(t *testing.T) {
	var notFound atomic.Bool
	notFound.Store(true)
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if notFound.Load() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(londonBody))
	})

	for i := 0; i < 10; i++ {
		if _, err := p.Fetch(context.Background(), "nowhere"); err == nil {
			t.Fatalf("expected error on attempt %d", i)
		}
	}

	notFound.Store(false)
	if _, err := p.Fetch(context.Background(), "London"); err != nil {
		t.Fatalf("breaker should still be closed, got %v", err)
	}
}

func TestWeatherAPIServerErrorsKeepCallingByDefault(t *testing.T) {
	var healthy atomic.Bool
	p, calls := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(londonBody))
	})

	for i := 0; i < 10; i++ {
		if _, err := p.Fetch(context.Background(), "London"); !errors.Is(err, errServerError) {
			t.Fatalf("attempt %d: expected errServerError, got %v", i, err)
		}
	}

	healthy.Store(true)
	if _, err := p.Fetch(context.Background(), "London"); err != nil {
		t.Fatalf("expected a real request after repeated failures, got %v", err)
	}
	if n := atomic.LoadInt32(calls); n != 11 {
		t.Fatalf("expected one request per fetch (11), got %d", n)
	}
}

func TestWeatherAPIBreakerOpensWhenEnabled(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "test-key", WeatherAPIOptions{BaseURL: srv.URL, Breaker: true})
	for i := 0; i <= breakerTripAfter; i++ {
		_, _ = p.Fetch(context.Background(), "London")
	}

	_, err := p.Fetch(context.Background(), "London")
	if !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected errCircuitOpen, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != breakerTripAfter+1 {
		t.Fatalf("expected %d requests before the breaker opened, got %d", breakerTripAfter+1, n)
	}
}

func TestWeatherAPIMissingKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "", WeatherAPIOptions{})
	if _, err := p.Fetch(context.Background(), "London"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNormalizeCurrentRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":          `<html>oops</html>`,
		"truncated":         `{"current": {"temp_c": 3`,
		"null":              `null`,
		"missing current":   `{"location": {"name": "Oslo"}}`,
		"missing condition": `{"location": {"name": "Oslo"}, "current": {"temp_c": 3}}`,
		"missing location":  `{"current": {"temp_c": 3, "condition": {"text": "Snow"}}}`,
	}

	for name, body := range cases {
		if _, err := NormalizeCurrent(strings.NewReader(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestNormalizeCurrentKeepsScalarsAsFound(t *testing.T) {
	r, err := NormalizeCurrent(strings.NewReader(`{"location": {}, "current": {"condition": {}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Temperature != 0 || r.Condition != "" || r.Location != "" || r.Unit != weather.UnitCelsius {
		t.Fatalf("unexpected reading %+v", r)
	}
}
