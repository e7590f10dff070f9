package core

import (
	"context"
	"time"

	"github.com/shrek82/jmapper/pool"
)

// Component is the base interface for all jmapper components/middleware.
type Component interface {
	Name() string
	Init(db *DB) error
	Shutdown() error
}

// Statement is the command a query is about to run.
type Statement struct {
	Kind       pool.Kind
	Text       string
	Timeout    time.Duration
	Parameters []QueryParameter
	// Fields are attached to the log entries of this statement.
	Fields map[string]any
}

// WithFields adds log fields to the statement.
func (s *Statement) WithFields(fields map[string]any) *Statement {
	if s.Fields == nil {
		s.Fields = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		s.Fields[k] = v
	}
	return s
}

// Args returns the parameters as name=value pairs for logging.
func (s *Statement) Args() []any {
	args := make([]any, len(s.Parameters))
	for i, p := range s.Parameters {
		args[i] = p.Name + "=" + formatValue(p.Value)
	}
	return args
}

// Result represents the result of a query execution.
type Result struct {
	Rows       int
	Data       any // the materialized []T
	Parameters []QueryParameter
}

// QueryFunc is the function type for the next step in the middleware chain.
type QueryFunc func(ctx context.Context, stmt *Statement) (*Result, error)

// QueryMiddleware is the interface for query interceptors.
type QueryMiddleware interface {
	Component
	Process(ctx context.Context, stmt *Statement, next QueryFunc) (*Result, error)
}

// chain wraps final so the first registered middleware runs outermost.
func (db *DB) chain(final QueryFunc) QueryFunc {
	next := final
	for i := len(db.middlewares) - 1; i >= 0; i-- {
		m, inner := db.middlewares[i], next
		next = func(ctx context.Context, stmt *Statement) (*Result, error) {
			return m.Process(ctx, stmt, inner)
		}
	}
	return next
}
