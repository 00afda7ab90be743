package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/meteo/backend/internal/domain"
)

// openWeatherResponse is the subset of the OpenWeatherMap current weather
// payload we depend on. Pointers let the decoder tell a missing field from a
// zero value.
type openWeatherResponse struct {
	Name *string `json:"name"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  *int     `json:"pressure"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        *string `json:"main"`
		Description *string `json:"description"`
		Icon        *string `json:"icon"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Sys *struct {
		Country *string `json:"country"`
	} `json:"sys"`
	Visibility *int `json:"visibility"`
}

// errMissingField reports a field absent from the provider payload
var errMissingField = errors.New("missing required field")

func missing(field string) error {
	return fmt.Errorf("%w %q", errMissingField, field)
}

// snapshot converts the payload, failing on the first missing field.
func (r *openWeatherResponse) snapshot(fetchedAt time.Time) (domain.WeatherSnapshot, error) {
	var s domain.WeatherSnapshot

	if r.Name == nil {
		return s, missing("name")
	}
	if r.Main == nil {
		return s, missing("main")
	}
	switch {
	case r.Main.Temp == nil:
		return s, missing("main.temp")
	case r.Main.FeelsLike == nil:
		return s, missing("main.feels_like")
	case r.Main.TempMin == nil:
		return s, missing("main.temp_min")
	case r.Main.TempMax == nil:
		return s, missing("main.temp_max")
	case r.Main.Humidity == nil:
		return s, missing("main.humidity")
	case r.Main.Pressure == nil:
		return s, missing("main.pressure")
	}

	// Safety check for weather data
	if len(r.Weather) == 0 {
		return s, fmt.Errorf("no weather conditions returned from API")
	}
	cond := r.Weather[0]
	switch {
	case cond.Main == nil:
		return s, missing("weather[0].main")
	case cond.Description == nil:
		return s, missing("weather[0].description")
	case cond.Icon == nil:
		return s, missing("weather[0].icon")
	}

	if r.Wind == nil || r.Wind.Speed == nil {
		return s, missing("wind.speed")
	}
	if r.Sys == nil || r.Sys.Country == nil {
		return s, missing("sys.country")
	}
	if r.Visibility == nil {
		return s, missing("visibility")
	}

	return domain.WeatherSnapshot{
		Name:        *r.Name,
		Country:     *r.Sys.Country,
		Temperature: *r.Main.Temp,
		FeelsLike:   *r.Main.FeelsLike,
		TempMin:     *r.Main.TempMin,
		TempMax:     *r.Main.TempMax,
		Humidity:    *r.Main.Humidity,
		Pressure:    *r.Main.Pressure,
		Visibility:  *r.Visibility,
		WindSpeed:   *r.Wind.Speed,
		Condition:   *cond.Main,
		Description: *cond.Description,
		Icon:        *cond.Icon,
		FetchedAt:   fetchedAt,
	}, nil
}
