package weather

import (
	"context"
	"fmt"
	"strings"
)

// Units is the measurement system requested from the provider.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits accepts "metric" or "imperial" in any case, and also the form
// labels ("Metric (°C)", "Imperial (°F)"). Empty input yields metric.
func ParseUnits(s string) (Units, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return UnitsMetric, true
	case strings.HasPrefix(s, string(UnitsMetric)):
		return UnitsMetric, true
	case strings.HasPrefix(s, string(UnitsImperial)):
		return UnitsImperial, true
	default:
		return "", false
	}
}

// TemperatureSymbol is the suffix shown after a temperature.
func (u Units) TemperatureSymbol() string {
	if u == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// WindSpeedUnit is the provider's wind speed unit for u.
func (u Units) WindSpeedUnit() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// Reading is the current weather for one city, as reported by the provider.
type Reading struct {
	City        string  `json:"city,omitempty"` // name resolved by the provider
	Units       Units   `json:"units"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
	Humidity    float64 `json:"humidity"`
	IconCode    string  `json:"icon_code"`
}

// Client fetches current conditions for a city.
type Client interface {
	Current(ctx context.Context, city string, units Units) (Reading, error)
}

// CityNotFoundError is returned when the provider answers with a non-OK status code.
type CityNotFoundError struct {
	Code    int
	Message string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("weather provider status %d: %s", e.Code, e.Message)
}

// TransportError wraps network failures talking to the provider.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "weather request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a body that is not JSON or lacks a required field.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return "weather response missing field " + e.Field
	}
	return "decode weather response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
