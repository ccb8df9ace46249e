package logger

import (
	"context"
	"log/slog"
	"sync"
)

type ctxKey struct{}

// scope is the per-request logging state kept in a context.
type scope struct {
	log *slog.Logger

	mu    sync.Mutex
	attrs []any
}

// WithContext returns a copy of ctx carrying log.
func WithContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, &scope{log: log})
}

// FromContext returns the logger stored by WithContext, or fallback.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if s, ok := ctx.Value(ctxKey{}).(*scope); ok && s.log != nil {
		return s.log
	}
	return fallback
}

// Annotate records key/value pairs on the scope of ctx so whoever created it
// can log them once the request is over. It is a no-op without a scope.
func Annotate(ctx context.Context, args ...any) {
	s, ok := ctx.Value(ctxKey{}).(*scope)
	if !ok {
		return
	}
	s.mu.Lock()
	s.attrs = append(s.attrs, args...)
	s.mu.Unlock()
}

// Annotations returns what Annotate recorded on ctx.
func Annotations(ctx context.Context) []any {
	s, ok := ctx.Value(ctxKey{}).(*scope)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.attrs...)
}
