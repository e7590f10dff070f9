package core

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/shrek82/jmapper/pool"
)

// Plan is an immutable query ready to run any number of times.
type Plan[T any] struct {
	kind          pool.Kind
	text          string
	timeout       time.Duration
	connString    string
	ignoreMissing bool
	params        []QueryParameter
	strategy      strategy
}

// Statement describes the command the plan runs.
func (p *Plan[T]) Statement() *Statement {
	return &Statement{
		Kind:       p.kind,
		Text:       p.text,
		Timeout:    p.timeout,
		Parameters: append([]QueryParameter(nil), p.params...),
	}
}

// Execute runs the plan on conn, inside tx when tx is not nil. The command
// and cursor are closed before it returns; conn is not.
func (p *Plan[T]) Execute(ctx context.Context, conn pool.Conn, tx pool.Tx) (*QueryResult[T], error) {
	if !conn.IsOpen() {
		if err := conn.Open(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		}
	}

	cmd := conn.CreateCommand()
	defer cmd.Close()

	params := make([]pool.Param, len(p.params))
	for i, qp := range p.params {
		dp := cmd.CreateParameter()
		qp.apply(dp)
		params[i] = dp
	}

	cur, err := cmd.Execute(ctx, pool.Request{
		Kind:    p.kind,
		Text:    p.text,
		Timeout: p.timeout,
		Params:  params,
		Tx:      tx,
	})
	if err != nil {
		return nil, err
	}

	list, err := materialize[T](ctx, cur, p.strategy, p.ignoreMissing)
	closeErr := cur.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	out := make([]QueryParameter, len(params))
	for i, dp := range params {
		out[i] = snapshot(dp)
	}
	return &QueryResult[T]{List: list, Parameters: out}, nil
}

// run executes p through the DB middleware chain and logs the statement.
func run[T any](ctx context.Context, db *DB, p *Plan[T], conn pool.Conn, tx pool.Tx) (*QueryResult[T], error) {
	if db == nil {
		return p.Execute(ctx, conn, tx)
	}

	var res *QueryResult[T]
	final := func(ctx context.Context, _ *Statement) (*Result, error) {
		r, err := p.Execute(ctx, conn, tx)
		if err != nil {
			return nil, err
		}
		res = r
		return &Result{Rows: len(r.List), Data: r.List, Parameters: r.Parameters}, nil
	}

	stmt := p.Statement()
	start := time.Now()
	r, err := db.chain(final)(ctx, stmt)
	if err != nil {
		if l := db.loggerFor(stmt); l != nil {
			l.SQLError(stmt.Text, time.Since(start), err, stmt.Args()...)
		}
		return nil, err
	}
	if l := db.loggerFor(stmt); l != nil {
		l.SQL(stmt.Text, time.Since(start), stmt.Args()...)
	}

	if res == nil {
		// a middleware answered without running the plan
		if r == nil {
			r = &Result{}
		}
		list, _ := r.Data.([]T)
		res = &QueryResult[T]{List: list, Parameters: r.Parameters}
	}
	return res, nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
