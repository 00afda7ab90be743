package domain

import (
	"fmt"
	"math"
	"time"
)

// WeatherSnapshot is one fetched observation. It is produced once by the
// weather client and handed around by value; nothing mutates it afterwards.
type WeatherSnapshot struct {
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	Visibility  int       `json:"visibility"`
	WindSpeed   float64   `json:"wind_speed"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Validate checks the snapshot invariants.
func (s WeatherSnapshot) Validate() error {
	floats := []struct {
		name  string
		value float64
	}{
		{"temperature", s.Temperature},
		{"feels_like", s.FeelsLike},
		{"temp_min", s.TempMin},
		{"temp_max", s.TempMax},
		{"wind_speed", s.WindSpeed},
	}
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is not finite", f.name)
		}
	}
	if s.Humidity < 0 || s.Humidity > 100 {
		return fmt.Errorf("humidity %d out of range [0, 100]", s.Humidity)
	}
	if s.Visibility < 0 {
		return fmt.Errorf("visibility %d must not be negative", s.Visibility)
	}
	if s.Pressure < 0 {
		return fmt.Errorf("pressure %d must not be negative", s.Pressure)
	}
	if s.WindSpeed < 0 {
		return fmt.Errorf("wind speed %g must not be negative", s.WindSpeed)
	}
	return nil
}

// WeatherResponse wraps a snapshot for the HTTP API
type WeatherResponse struct {
	Data    WeatherSnapshot `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
}
