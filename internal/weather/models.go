package weather

// Unit labels the scale a Reading's temperature is expressed in.
type Unit string

const (
	UnitCelsius Unit = "C"
)

// Reading is a normalized current-weather observation for one place.
// Readings are only produced by a provider from a successful response.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Location    string  `json:"location"`
	Unit        Unit    `json:"unit"`
}

// Advisories are the three display lines rendered for a Reading.
type Advisories struct {
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
	Location    string `json:"location"`
}
