package view

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/meteo/backend/internal/domain"
	"github.com/meteo/backend/pkg/utils"
)

const iconBaseURL = "https://openweathermap.org/img/wn/"

// Icon scales served by the provider
const (
	IconScaleCard    = 2
	IconScaleDetails = 4
)

// Summary is the search page weather card.
type Summary struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	Temperature string `json:"temperature"`
	FeelsLike   string `json:"feels_like"`
	Description string `json:"description"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	Pressure    string `json:"pressure"`
	Visibility  string `json:"visibility"`
	IconURL     string `json:"icon_url"`
}

// Summarize builds the card for s. Temperatures are rounded to whole degrees.
func Summarize(s domain.WeatherSnapshot) Summary {
	return Summary{
		Name:        s.Name,
		Country:     s.Country,
		Temperature: FormatTemperature(s.Temperature, 0),
		FeelsLike:   FormatTemperature(s.FeelsLike, 0),
		Description: TitleCase(s.Description),
		Humidity:    FormatHumidity(s.Humidity),
		Wind:        FormatWind(s.WindSpeed),
		Pressure:    FormatPressure(s.Pressure),
		Visibility:  FormatVisibility(s.Visibility),
		IconURL:     IconURL(s.Icon, IconScaleCard),
	}
}

// Temperatures groups the details page temperature readings.
type Temperatures struct {
	Current   string `json:"current"`
	FeelsLike string `json:"feels_like"`
	Min       string `json:"min"`
	Max       string `json:"max"`
	Color     string `json:"color"`
}

// Details is the expanded breakdown shown by the details page.
type Details struct {
	Name         string       `json:"name"`
	Country      string       `json:"country"`
	Temperatures Temperatures `json:"temperatures"`
	Condition    string       `json:"condition"`
	Description  string       `json:"description"`
	IconURL      string       `json:"icon_url"`
	Humidity     string       `json:"humidity"`
	Pressure     string       `json:"pressure"`
	Visibility   string       `json:"visibility"`
	Wind         string       `json:"wind"`
	FetchedAt    time.Time    `json:"fetched_at"`
}

// IconURL returns the provider icon image at the given scale.
func IconURL(icon string, scale int) string {
	if icon == "" {
		return ""
	}
	return fmt.Sprintf("%s%s@%dx.png", iconBaseURL, icon, scale)
}

// TemperatureColor picks the display colour band for a temperature in °C.
func TemperatureColor(celsius float64) string {
	switch {
	case celsius < 0:
		return "#74b9ff"
	case celsius < 10:
		return "#00cec9"
	case celsius < 20:
		return "#00b894"
	case celsius < 30:
		return "#fdcb6e"
	default:
		return "#e17055"
	}
}

// FormatTemperature renders celsius with the given number of decimals.
func FormatTemperature(celsius float64, decimals int) string {
	v := utils.RoundTo(celsius, decimals)
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', decimals, 64) + "°C"
}

// FormatVisibility converts meters to kilometres, one decimal at most.
func FormatVisibility(meters int) string {
	km := utils.RoundTo(float64(meters)/1000, 1)
	return strconv.FormatFloat(km, 'f', -1, 64) + " km"
}

func FormatHumidity(pct int) string {
	return strconv.Itoa(pct) + "%"
}

func FormatPressure(hpa int) string {
	return strconv.Itoa(hpa) + " hPa"
}

func FormatWind(speed float64) string {
	if math.IsNaN(speed) {
		return ""
	}
	return strconv.FormatFloat(speed, 'f', -1, 64) + " m/s"
}

// TitleCase upper-cases the first letter of every word. A Caser is not safe
// for concurrent use, so one is built per call.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
