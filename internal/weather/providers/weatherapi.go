package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultWeatherAPIBaseURL is the public WeatherAPI.com endpoint root.
const DefaultWeatherAPIBaseURL = "https://api.weatherapi.com"

var errMalformedPayload = errors.New("malformed weatherapi payload")

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// WeatherAPIOptions configures a WeatherAPIProvider. Zero values keep defaults:
// the public endpoint, a single attempt per fetch and a breaker that never opens.
type WeatherAPIOptions struct {
	BaseURL    string
	MaxRetries int
	// Breaker lets the circuit open after repeated 5xx/transport failures,
	// rejecting fetches without a network call until it recovers.
	Breaker bool
}

// The breaker opens once consecutive failures exceed breakerTripAfter.
const breakerTripAfter = 5

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts WeatherAPIOptions) *WeatherAPIProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherapi",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return opts.Breaker && counts.ConsecutiveFailures > breakerTripAfter
		},
	})

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultWeatherAPIBaseURL
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: base + "/v1/current.json",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      opts.MaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Fetch issues one current-conditions request for query and normalizes the response.
func (p *WeatherAPIProvider) Fetch(ctx context.Context, query string) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.requestURL(query), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}
	defer resp.Body.Close()

	return NormalizeCurrent(resp.Body)
}

// requestURL builds the endpoint URL; url.Values percent-encodes the query term.
func (p *WeatherAPIProvider) requestURL(query string) string {
	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", query)
	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}

type currentPayload struct {
	Location *struct {
		Name string `json:"name"`
	} `json:"location"`
	Current *struct {
		TempC     float64 `json:"temp_c"`
		Condition *struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

// NormalizeCurrent decodes a current.json body into a Celsius Reading.
// It fails when the body is not JSON or one of the location, current and
// current.condition objects is missing; scalar fields are taken as found.
func NormalizeCurrent(body io.Reader) (weather.Reading, error) {
	var payload currentPayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("decode weatherapi response: %w", err)
	}

	switch {
	case payload.Current == nil:
		return weather.Reading{}, fmt.Errorf("%w: missing current", errMalformedPayload)
	case payload.Current.Condition == nil:
		return weather.Reading{}, fmt.Errorf("%w: missing current.condition", errMalformedPayload)
	case payload.Location == nil:
		return weather.Reading{}, fmt.Errorf("%w: missing location", errMalformedPayload)
	}

	return weather.Reading{
		Temperature: payload.Current.TempC,
		Condition:   payload.Current.Condition.Text,
		Location:    payload.Location.Name,
		Unit:        weather.UnitCelsius,
	}, nil
}
