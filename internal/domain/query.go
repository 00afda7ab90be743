package domain

import (
	"fmt"
	"math"
	"strings"
)

// Coordinates is a WGS84 position
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks the coordinates are finite and in range.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return NewValidationError("Coordinates must be numbers.")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return NewValidationError(fmt.Sprintf("Latitude must be between -90 and 90, got %g.", c.Lat))
	}
	if c.Lon < -180 || c.Lon > 180 {
		return NewValidationError(fmt.Sprintf("Longitude must be between -180 and 180, got %g.", c.Lon))
	}
	return nil
}

// Query selects the location of a lookup: a city name or coordinates, never both.
type Query struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// NewCityQuery trims name and rejects it when nothing is left.
func NewCityQuery(name string) (Query, error) {
	city := strings.TrimSpace(name)
	if city == "" {
		return Query{}, NewValidationError(MsgValidation)
	}
	return Query{City: city}, nil
}

// NewCoordsQuery validates a coordinate pair.
func NewCoordsQuery(lat, lon float64) (Query, error) {
	c := Coordinates{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Query{}, err
	}
	return Query{Coords: &c}, nil
}

// IsCoords reports whether the query is coordinate based.
func (q Query) IsCoords() bool {
	return q.Coords != nil
}

func (q Query) String() string {
	if q.Coords != nil {
		return fmt.Sprintf("%.4f,%.4f", q.Coords.Lat, q.Coords.Lon)
	}
	return q.City
}
