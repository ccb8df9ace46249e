package advisor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"outfit-advisor/internal/llm"
	"outfit-advisor/internal/logger"
	"outfit-advisor/internal/weather"
)

// ErrorKind classifies why a cycle ended in StateErrorDisplayed.
type ErrorKind string

const (
	KindCityNotFound ErrorKind = "city_not_found"
	KindTransport    ErrorKind = "transport_error"
	KindParse        ErrorKind = "parse_error"
	KindSuggestion   ErrorKind = "suggestion_error"
	KindUnexpected   ErrorKind = "unexpected_error"
	KindInvalidInput ErrorKind = "invalid_input"
)

// Failure is the single user-visible error of a cycle.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// OutfitSuggestion is the model's reply, kept as opaque markdown.
type OutfitSuggestion struct {
	Text string `json:"text"`
}

// Result describes what to render after a cycle.
type Result struct {
	CycleID    uuid.UUID         `json:"cycle_id"`
	State      State             `json:"state"`
	Query      Query             `json:"query"`
	Weather    *WeatherView      `json:"weather,omitempty"`
	Suggestion *OutfitSuggestion `json:"suggestion,omitempty"`
	Failure    *Failure          `json:"error,omitempty"`
	Prompt     string            `json:"-"`
}

// Flow runs the weather lookup and the suggestion lookup for one query.
// It keeps no state between runs.
type Flow struct {
	weather     weather.Client
	llm         llm.Client
	iconBaseURL string
	log         *slog.Logger
}

func NewFlow(w weather.Client, l llm.Client, iconBaseURL string, log *slog.Logger) *Flow {
	return &Flow{weather: w, llm: l, iconBaseURL: iconBaseURL, log: log}
}

// Run executes one cycle. It never returns an error: failures end the cycle in
// StateErrorDisplayed with Failure set. A blank city ends in StateIdle without
// any network call.
func (f *Flow) Run(ctx context.Context, q Query) Result {
	res := Result{CycleID: uuid.New(), State: StateIdle, Query: q}
	id := res.CycleID.String()
	log := logger.FromContext(ctx, f.log).With("cycle_id", id)
	logger.Annotate(ctx, "cycle_id", id)

	if q.City == "" {
		return res
	}

	f.enter(log, &res, StateWeatherFetching)
	reading, err := f.weather.Current(ctx, q.City, q.Units)
	if err != nil {
		return f.fail(log, res, err)
	}
	view := NewWeatherView(reading, f.iconBaseURL)
	res.Weather = &view
	res.Prompt = BuildPrompt(reading)

	f.enter(log, &res, StateSuggestionFetching)
	text, err := f.llm.Chat(ctx, res.Prompt)
	if err != nil {
		return f.fail(log, res, err)
	}
	res.Suggestion = &OutfitSuggestion{Text: text}

	f.enter(log, &res, StateDone)
	return res
}

func (f *Flow) enter(log *slog.Logger, res *Result, next State) {
	if !CanTransition(res.State, next) {
		log.Error("invalid state transition", "from", res.State, "to", next)
	}
	log.Debug("cycle state", "from", res.State, "to", next, "city", res.Query.City, "activity", next.Activity())
	res.State = next
	if next.Terminal() {
		args := []any{"state", next, "city", res.Query.City}
		if res.Failure != nil {
			args = append(args, "kind", res.Failure.Kind)
		}
		log.Info("cycle finished", args...)
	}
}

func (f *Flow) fail(log *slog.Logger, res Result, err error) Result {
	failure := Classify(err)
	log.Warn("cycle failed", "state", res.State, "kind", failure.Kind, "err", err)
	res.Failure = &failure
	f.enter(log, &res, StateErrorDisplayed)
	return res
}

// Rejected is the result for input that never reached the flow. The cycle
// stays idle and the page shows message in place of a lookup error.
func Rejected(q Query, message string) Result {
	return Result{
		State:   StateIdle,
		Query:   q,
		Failure: &Failure{Kind: KindInvalidInput, Message: "Invalid input: " + message},
	}
}

// Classify maps a lookup error onto the user-visible failure.
func Classify(err error) Failure {
	var (
		notFound   *weather.CityNotFoundError
		transport  *weather.TransportError
		parse      *weather.ParseError
		suggestion *llm.SuggestionError
	)
	switch {
	case errors.As(err, &notFound):
		return Failure{Kind: KindCityNotFound, Message: "City not found: " + notFound.Message}
	case errors.As(err, &transport):
		return Failure{Kind: KindTransport, Message: occurred(err)}
	case errors.As(err, &parse):
		return Failure{Kind: KindParse, Message: occurred(err)}
	case errors.As(err, &suggestion):
		return Failure{Kind: KindSuggestion, Message: occurred(err)}
	default:
		return Failure{Kind: KindUnexpected, Message: occurred(err)}
	}
}

func occurred(err error) string {
	return "Error occurred: " + err.Error()
}
