package advisor

import (
	"strings"

	"outfit-advisor/internal/weather"
)

// Query is the input of one cycle.
type Query struct {
	City  string        `json:"city"`
	Units weather.Units `json:"units"`
}

// NewQuery trims the city. A blank city means nothing is looked up.
func NewQuery(city string, units weather.Units) Query {
	if units == "" {
		units = weather.UnitsMetric
	}
	return Query{City: strings.TrimSpace(city), Units: units}
}

// State is the position of a cycle in the flow.
type State string

const (
	StateIdle               State = "idle"
	StateWeatherFetching    State = "weather_fetching"
	StateSuggestionFetching State = "suggestion_fetching"
	StateDone               State = "done"
	StateErrorDisplayed     State = "error_displayed"
)

var transitions = map[State][]State{
	StateIdle:               {StateWeatherFetching},
	StateWeatherFetching:    {StateSuggestionFetching, StateErrorDisplayed},
	StateSuggestionFetching: {StateDone, StateErrorDisplayed},
}

// CanTransition reports whether the flow may move from one state to another.
// Done and ErrorDisplayed are terminal.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the cycle.
func (s State) Terminal() bool {
	return s == StateDone || s == StateErrorDisplayed
}

// Activity is the progress text shown while in s.
func (s State) Activity() string {
	switch s {
	case StateWeatherFetching:
		return "Fetching weather data..."
	case StateSuggestionFetching:
		return "Generating outfit suggestion..."
	default:
		return ""
	}
}
