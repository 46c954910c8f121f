package logger

import "context"

type contextKey string

const traceIDKey contextKey = "trace_id"

// WithTraceID stamps a request-scoped trace id onto the context. The
// HTTP middleware sets it; everything downstream logs it.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// GetTraceID returns the trace id or "" when the context has none.
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}
