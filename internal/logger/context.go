package logger

import "context"

// ctxKey keeps the request-ID entry private to this package.
type ctxKey struct{}

// WithRequestID attaches the ID of the current HTTP request to ctx so
// handlers and log lines downstream can reference the same request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the ID stored by WithRequestID, or "" when ctx
// carries none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
