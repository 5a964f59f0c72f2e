package weather

import (
	"context"
	"time"
)

// Provider abstracts a current-weather data source (e.g. WeatherAPI).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, query string) (Reading, error)
}

// Clock supplies the wall-clock time used when formatting.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
