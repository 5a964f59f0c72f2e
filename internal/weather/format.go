package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var conditionAdvisories = map[string]string{
	"sunny":         "It's a beautiful sunny day!",
	"partly cloudy": "Expect some clouds and sunshine.",
	"cloudy":        "It's cloudy today.",
	"overcast":      "The sky is overcast.",
	"rain":          "Don't forget your umbrella! It's raining.",
	"thunderstorm":  "Thunderstorms are expected today.",
	"snow":          "Bundle up! It's snowing.",
	"mist":          "It's misty outside.",
	"fog":           "Be careful, there's fog outside.",
}

// TemperatureAdvisory buckets a Celsius temperature into a canned message.
// Buckets are half-open and include their lower bound. Any other unit is
// rendered as the bare value with its unit label.
func TemperatureAdvisory(temp float64, unit Unit) string {
	t := formatNumber(temp)
	if unit != UnitCelsius {
		return fmt.Sprintf("%s°%s", t, unit)
	}

	switch {
	case temp < 0:
		return fmt.Sprintf("Its freezing at %s°C, Bundle up!", t)
	case temp < 10:
		return fmt.Sprintf("It's quite cold at %s°C. Wear warm clothes.", t)
	case temp < 20:
		return fmt.Sprintf("The temperature is %s°C. Comfortable for a light jacket.", t)
	case temp < 30:
		return fmt.Sprintf("It's a pleasant %s°C. Enjoy the nice weather!", t)
	default:
		return fmt.Sprintf("It is hot %s°C. Stay Hydrated!", t)
	}
}

// ConditionAdvisory maps a condition description to a canned sentence.
// Matching is case-insensitive and exact; unknown descriptions are returned as-is.
func ConditionAdvisory(description string) string {
	if msg, ok := conditionAdvisories[strings.ToLower(description)]; ok {
		return msg
	}
	return description
}

// LocationLabel qualifies a place name with the part of the day at the given time.
func LocationLabel(location string, at time.Time) string {
	if isNight(at.Hour()) {
		return location + " at Night"
	}
	return location + " During the Day"
}

func isNight(hour int) bool {
	return hour >= 18 || hour < 6
}

// formatNumber prints the shortest decimal that round-trips, so 22.5 stays
// "22.5" and 10 stays "10". Negative zero prints as "0".
func formatNumber(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Formatter renders Readings into Advisories. The location label is taken
// from the clock at formatting time, not from when the reading was fetched.
type Formatter struct {
	clock Clock
}

// NewFormatter creates a Formatter. A nil clock falls back to the system clock.
func NewFormatter(clock Clock) *Formatter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Formatter{clock: clock}
}

// Format derives the advisory lines for r.
func (f *Formatter) Format(r Reading) Advisories {
	return Advisories{
		Temperature: TemperatureAdvisory(r.Temperature, r.Unit),
		Condition:   ConditionAdvisory(r.Condition),
		Location:    LocationLabel(r.Location, f.clock.Now()),
	}
}
