package advisor

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"outfit-advisor/internal/weather"
)

// WeatherView is a reading formatted for display.
type WeatherView struct {
	City        string          `json:"city,omitempty"`
	Temperature string          `json:"temperature"`
	Humidity    string          `json:"humidity"`
	WindSpeed   string          `json:"wind_speed"`
	Info        string          `json:"info"`
	IconURL     string          `json:"icon_url"`
	Reading     weather.Reading `json:"reading"`
}

// NewWeatherView formats r without converting any value.
func NewWeatherView(r weather.Reading, iconBaseURL string) WeatherView {
	return WeatherView{
		City:        r.City,
		Temperature: formatNumber(r.Temperature) + r.Units.TemperatureSymbol(),
		Humidity:    formatNumber(r.Humidity) + "%",
		WindSpeed:   formatNumber(r.WindSpeed) + " " + r.Units.WindSpeedUnit(),
		Info:        capitalize(r.Description),
		IconURL:     weather.IconURL(iconBaseURL, r.IconCode),
		Reading:     r,
	}
}

// formatNumber prints the shortest exact form: 15, 3.5, -0.25.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
