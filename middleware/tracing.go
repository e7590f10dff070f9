package middleware

import (
	"context"

	"github.com/shrek82/jmapper/core"
)

// ContextKey is the type of the context keys the tracing middleware reads.
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserIPKey    ContextKey = "user_ip"
	TraceIDKey   ContextKey = "trace_id"
)

// TracingMiddleware copies request identifiers from the context into the
// log fields of each statement.
type TracingMiddleware struct {
	Keys []ContextKey
}

func NewTracing(keys ...ContextKey) *TracingMiddleware {
	if len(keys) == 0 {
		keys = []ContextKey{RequestIDKey, UserIPKey, TraceIDKey}
	}
	return &TracingMiddleware{Keys: keys}
}

func (m *TracingMiddleware) Name() string {
	return "Tracing"
}

func (m *TracingMiddleware) Init(db *core.DB) error {
	return nil
}

func (m *TracingMiddleware) Shutdown() error {
	return nil
}

func (m *TracingMiddleware) Process(ctx context.Context, stmt *core.Statement, next core.QueryFunc) (*core.Result, error) {
	fields := make(map[string]any)
	for _, k := range m.Keys {
		if v := ctx.Value(k); v != nil {
			fields[string(k)] = v
		}
	}

	if len(fields) > 0 {
		stmt.WithFields(fields)
	}

	return next(ctx, stmt)
}
