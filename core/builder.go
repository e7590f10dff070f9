package core

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/shrek82/jmapper/model"
	"github.com/shrek82/jmapper/pool"
)

// QueryBuilder accumulates one query: command text, parameters and how rows
// become values of T. Methods return the builder for chaining. Errors from
// configuration are kept and returned by Err and by every GetResult call.
//
// A builder is not safe for concurrent use. Plan freezes it into an
// immutable value that is.
type QueryBuilder[T any] struct {
	db            *DB
	ctx           context.Context
	connString    string
	kind          pool.Kind
	text          string
	timeout       int
	ignoreMissing bool
	params        []QueryParameter
	mappings      []PropertyMapping
	rowFn         func(RowValues) (T, error)
	err           error
}

// NewQuery starts a builder using db for connections, logging and defaults.
// db may be nil when the query only runs on caller supplied connections.
func NewQuery[T any](db *DB) *QueryBuilder[T] {
	b := &QueryBuilder[T]{
		db:            db,
		ctx:           context.Background(),
		timeout:       DefaultCommandTimeout,
		ignoreMissing: true,
	}
	if db != nil {
		b.connString = db.connString
		b.timeout = db.timeout
		b.ignoreMissing = db.ignoreMissing
	}
	return b
}

func (b *QueryBuilder[T]) fail(op string, err error) {
	if b.err == nil {
		b.err = &ConfigError{Op: op, Err: err}
	}
}

// Err returns the first configuration error.
func (b *QueryBuilder[T]) Err() error {
	return b.err
}

// WithContext sets the context for opening, executing and reading rows.
func (b *QueryBuilder[T]) WithContext(ctx context.Context) *QueryBuilder[T] {
	if ctx == nil {
		b.fail("WithContext", fmt.Errorf("nil context"))
		return b
	}
	b.ctx = ctx
	return b
}

func (b *QueryBuilder[T]) SetConnectionString(s string) *QueryBuilder[T] {
	b.connString = s
	return b
}

// SetSql sets SQL text. It replaces an earlier SetStoredProcedure.
func (b *QueryBuilder[T]) SetSql(text string) *QueryBuilder[T] {
	b.kind, b.text = pool.KindText, text
	return b
}

// SetStoredProcedure sets a procedure name. It replaces an earlier SetSql.
func (b *QueryBuilder[T]) SetStoredProcedure(name string) *QueryBuilder[T] {
	b.kind, b.text = pool.KindStoredProcedure, name
	return b
}

// SetIgnoreMissingColumn controls mapped columns absent from the result.
// When false, such a column fails the query before the first row.
func (b *QueryBuilder[T]) SetIgnoreMissingColumn(ignore bool) *QueryBuilder[T] {
	b.ignoreMissing = ignore
	return b
}

// SetCommandTimeout sets the command timeout in seconds. Zero leaves the
// command without a deadline.
func (b *QueryBuilder[T]) SetCommandTimeout(seconds int) *QueryBuilder[T] {
	if seconds < 0 {
		b.fail("SetCommandTimeout", fmt.Errorf("negative timeout %d", seconds))
		return b
	}
	b.timeout = seconds
	return b
}

// MapProperty reads the selected property from column. A later mapping of
// the same property replaces the earlier one.
//
//	MapProperty(func(c *Customer) any { return &c.Zip }, "PostalCode")
func (b *QueryBuilder[T]) MapProperty(sel func(*T) any, column string) *QueryBuilder[T] {
	name, err := propertyOf(sel)
	if err != nil {
		b.fail("MapProperty", err)
		return b
	}
	if strings.TrimSpace(column) == "" {
		b.fail("MapProperty", fmt.Errorf("%w: empty column for property %s", ErrInvalidMapping, name))
		return b
	}
	b.mappings = putMapping(b.mappings, PropertyMapping{Property: name, Binding: ColumnBinding{Column: column}})
	return b
}

// MapPropertyFunc computes the selected property from the whole row. Like
// MapProperty, it replaces an earlier mapping of the same property.
func (b *QueryBuilder[T]) MapPropertyFunc(sel func(*T) any, fn func(row RowValues) (any, error)) *QueryBuilder[T] {
	name, err := propertyOf(sel)
	if err != nil {
		b.fail("MapPropertyFunc", err)
		return b
	}
	if fn == nil {
		b.fail("MapPropertyFunc", fmt.Errorf("%w: nil row mapper for property %s", ErrInvalidMapping, name))
		return b
	}
	b.mappings = putMapping(b.mappings, PropertyMapping{Property: name, Binding: ComputedBinding{Fn: fn}})
	return b
}

// MapObject builds each value from the whole row. It overrides every
// property mapping.
func (b *QueryBuilder[T]) MapObject(fn func(row RowValues) (T, error)) *QueryBuilder[T] {
	if fn == nil {
		b.fail("MapObject", fmt.Errorf("%w: nil row mapper", ErrInvalidMapping))
		return b
	}
	b.rowFn = fn
	return b
}

// AddParameter adds an input parameter.
func (b *QueryBuilder[T]) AddParameter(name string, value any) *QueryBuilder[T] {
	return b.addParam("AddParameter", NewParameter(name, value))
}

// AddParameterIf adds an input parameter only when cond returns true now.
func (b *QueryBuilder[T]) AddParameterIf(cond func() bool, name string, value any) *QueryBuilder[T] {
	if cond == nil || !cond() {
		return b
	}
	return b.addParam("AddParameterIf", NewParameter(name, value))
}

// AddParameterDirection adds a parameter with an explicit direction.
func (b *QueryBuilder[T]) AddParameterDirection(name string, value any, dir Direction) *QueryBuilder[T] {
	return b.addParam("AddParameterDirection", NewParameter(name, value).WithDirection(dir))
}

// AddQueryParameter adds a fully described parameter.
func (b *QueryBuilder[T]) AddQueryParameter(p QueryParameter) *QueryBuilder[T] {
	return b.addParam("AddQueryParameter", p)
}

func (b *QueryBuilder[T]) addParam(op string, p QueryParameter) *QueryBuilder[T] {
	if err := p.Validate(); err != nil {
		b.fail(op, err)
		return b
	}
	b.params = append(b.params, p)
	return b
}

// Plan freezes the configuration. Later changes to the builder do not affect
// the returned plan.
func (b *QueryBuilder[T]) Plan() (*Plan[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	if strings.TrimSpace(b.text) == "" {
		return nil, &ConfigError{Op: "Plan", Err: ErrNoCommandText}
	}

	p := &Plan[T]{
		kind:          b.kind,
		text:          b.text,
		timeout:       time.Duration(b.timeout) * time.Second,
		connString:    b.connString,
		ignoreMissing: b.ignoreMissing,
		params:        slices.Clone(b.params),
	}
	if b.rowFn != nil {
		p.strategy = wholeRow[T]{fn: b.rowFn}
	} else {
		typ := reflect.TypeFor[T]()
		if typ.Kind() != reflect.Struct {
			return nil, &ConfigError{Op: "Plan", Err: fmt.Errorf("%w: %s is not a struct; use MapObject", ErrInvalidMapping, typ)}
		}
		if _, err := model.GetModel(typ); err != nil {
			return nil, &ConfigError{Op: "Plan", Err: fmt.Errorf("%w: %v", ErrInvalidMapping, err)}
		}
		p.strategy = perProperty{mappings: slices.Clone(b.mappings)}
	}
	return p, nil
}

// GetResult opens a new connection, runs the query and closes the
// connection.
func (b *QueryBuilder[T]) GetResult() (*QueryResult[T], error) {
	p, err := b.Plan()
	if err != nil {
		return nil, err
	}
	if b.db == nil {
		return nil, fmt.Errorf("%w: query has no DB to open a connection from", ErrConnectionFailed)
	}

	conn, err := b.db.connect(p.connString)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return run(b.ctx, b.db, p, conn, nil)
}

// GetResultConn runs the query on conn, opening it if needed. conn is left
// open.
func (b *QueryBuilder[T]) GetResultConn(conn pool.Conn) (*QueryResult[T], error) {
	p, err := b.Plan()
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: nil connection", ErrConnectionFailed)
	}
	return run(b.ctx, b.db, p, conn, nil)
}

// GetResultTx runs the query inside tx on its connection. Commit and
// Rollback are left to the caller.
func (b *QueryBuilder[T]) GetResultTx(tx pool.Tx) (*QueryResult[T], error) {
	p, err := b.Plan()
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: nil transaction", ErrConnectionFailed)
	}
	raw := unwrapTx(tx)
	return run(b.ctx, b.db, p, raw.Conn(), raw)
}
