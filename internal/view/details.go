package view

import "github.com/meteo/backend/internal/domain"

// Route names an application page
type Route string

const (
	RouteSearch  Route = "/"
	RouteDetails Route = "/details"
)

// NavigationRequest carries a copy of the current snapshot from the search
// page to the details page. It is the only way data reaches a DetailsView.
type NavigationRequest struct {
	Target   Route                  `json:"target"`
	Snapshot domain.WeatherSnapshot `json:"snapshot"`
}

// DetailsView presents an already fetched snapshot. It never fetches.
type DetailsView struct {
	snapshot domain.WeatherSnapshot
}

// NewDetailsView enters the details page. Without a navigation payload there is
// nothing to show: it returns false and the caller must redirect to RouteSearch.
func NewDetailsView(nav *NavigationRequest) (*DetailsView, bool) {
	if nav == nil {
		return nil, false
	}
	return &DetailsView{snapshot: nav.Snapshot}, true
}

// Snapshot returns the presented observation
func (d *DetailsView) Snapshot() domain.WeatherSnapshot {
	return d.snapshot
}

// Render builds the expanded breakdown.
func (d *DetailsView) Render() Details {
	s := d.snapshot
	return Details{
		Name:    s.Name,
		Country: s.Country,
		Temperatures: Temperatures{
			Current:   FormatTemperature(s.Temperature, 1),
			FeelsLike: FormatTemperature(s.FeelsLike, 1),
			Min:       FormatTemperature(s.TempMin, 1),
			Max:       FormatTemperature(s.TempMax, 1),
			Color:     TemperatureColor(s.Temperature),
		},
		Condition:   s.Condition,
		Description: TitleCase(s.Description),
		IconURL:     IconURL(s.Icon, IconScaleDetails),
		Humidity:    FormatHumidity(s.Humidity),
		Pressure:    FormatPressure(s.Pressure),
		Visibility:  FormatVisibility(s.Visibility),
		Wind:        FormatWind(s.WindSpeed),
		FetchedAt:   s.FetchedAt,
	}
}
