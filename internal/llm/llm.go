package llm

import "context"

// Client sends one chat message and returns the model's text reply.
type Client interface {
	Chat(ctx context.Context, message string) (string, error)
}

// SuggestionError wraps any failure of a chat call. Provider error subtypes
// are not distinguished.
type SuggestionError struct {
	Err error
}

func (e *SuggestionError) Error() string { return "suggestion request failed: " + e.Err.Error() }
func (e *SuggestionError) Unwrap() error { return e.Err }
