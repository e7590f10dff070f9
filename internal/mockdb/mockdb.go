// Package mockdb is an in-memory pool.Opener for tests. It serves canned
// result tables, records every request and tracks which connections,
// commands and cursors are still open.
package mockdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/shrek82/jmapper/pool"
)

// ErrNotOpen is returned by Execute on a connection that was never opened.
var ErrNotOpen = errors.New("mockdb: connection is not open")

// Table is one result set.
type Table struct {
	Columns []string
	Rows    [][]any
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AddRow appends a row. It panics when the value count does not match the
// columns.
func (t *Table) AddRow(values ...any) *Table {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("mockdb: row has %d values, table has %d columns", len(values), len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
	return t
}

// FromStructs builds a table with one column per exported field of T. Nil
// pointers and nil interfaces become database nulls.
func FromStructs[T any](items ...T) *Table {
	typ := reflect.TypeFor[T]()
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	t := &Table{}
	var index [][]int
	for _, f := range reflect.VisibleFields(typ) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		t.Columns = append(t.Columns, f.Name)
		index = append(index, f.Index)
	}

	for _, item := range items {
		v := reflect.ValueOf(item)
		for v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		row := make([]any, len(index))
		for i, idx := range index {
			fv := v.FieldByIndex(idx)
			if (fv.Kind() == reflect.Ptr || fv.Kind() == reflect.Interface) && fv.IsNil() {
				continue
			}
			row[i] = reflect.Indirect(fv).Interface()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Driver serves Result to every command.
type Driver struct {
	mu sync.Mutex

	Result     *Table
	ConnectErr error
	OpenErr    error
	ExecErr    error
	// Outputs assigns values to non-input parameters, keyed by name without
	// its marker, ignoring case.
	Outputs map[string]any

	Requests []pool.Request
	conns    []*Conn
	commands []*Command
	cursors  []*Cursor
}

func New(result *Table) *Driver {
	return &Driver{Result: result, Outputs: make(map[string]any)}
}

func (d *Driver) Connect(connString string) (pool.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ConnectErr != nil {
		return nil, d.ConnectErr
	}
	c := &Conn{d: d, ConnString: connString}
	d.conns = append(d.conns, c)
	return c, nil
}

// LastRequest returns the most recent request.
func (d *Driver) LastRequest() (pool.Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.Requests) == 0 {
		return pool.Request{}, false
	}
	return d.Requests[len(d.Requests)-1], true
}

// Connections returns every connection handed out.
func (d *Driver) Connections() []*Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Conn(nil), d.conns...)
}

// OpenConns counts connections that are open.
func (d *Driver) OpenConns() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, c := range d.conns {
		if c.open {
			n++
		}
	}
	return n
}

// OpenCommands counts commands not yet closed.
func (d *Driver) OpenCommands() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, c := range d.commands {
		if !c.closed {
			n++
		}
	}
	return n
}

// OpenCursors counts cursors not yet closed.
func (d *Driver) OpenCursors() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, c := range d.cursors {
		if !c.closed {
			n++
		}
	}
	return n
}

// Conn is a fake session.
type Conn struct {
	d          *Driver
	ConnString string
	open       bool
	Opens      int
	Closes     int
}

func (c *Conn) IsOpen() bool {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	return c.open
}

func (c *Conn) Open(ctx context.Context) error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if c.d.OpenErr != nil {
		return c.d.OpenErr
	}
	c.open = true
	c.Opens++
	return nil
}

func (c *Conn) CreateCommand() pool.Command {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()

	cmd := &Command{conn: c}
	c.d.commands = append(c.d.commands, cmd)
	return cmd
}

func (c *Conn) BeginTx(ctx context.Context, _ *sql.TxOptions) (pool.Tx, error) {
	if !c.IsOpen() {
		if err := c.Open(ctx); err != nil {
			return nil, err
		}
	}
	return &Tx{conn: c}, nil
}

func (c *Conn) Close() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()

	if c.open {
		c.Closes++
	}
	c.open = false
	return nil
}

// Tx records how it ended.
type Tx struct {
	conn       *Conn
	Committed  bool
	RolledBack bool
}

func (t *Tx) Conn() pool.Conn { return t.conn }

func (t *Tx) Commit() error {
	t.Committed = true
	return nil
}

func (t *Tx) Rollback() error {
	t.RolledBack = true
	return nil
}

// Command records requests and returns cursors over the driver's Result.
type Command struct {
	conn   *Conn
	closed bool
}

func (c *Command) CreateParameter() pool.Param {
	return &Param{}
}

func (c *Command) Execute(ctx context.Context, req pool.Request) (pool.Cursor, error) {
	d := c.conn.d
	if req.Tx != nil && req.Tx.Conn() != pool.Conn(c.conn) {
		return nil, errors.New("mockdb: transaction belongs to another connection")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !c.conn.open {
		return nil, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.Requests = append(d.Requests, req)
	if d.ExecErr != nil {
		return nil, d.ExecErr
	}

	for _, p := range req.Params {
		if p.Direction() == pool.DirectionInput {
			continue
		}
		for name, v := range d.Outputs {
			if strings.EqualFold(strings.TrimLeft(p.Name(), "@:$"), name) {
				p.SetValue(v)
			}
		}
	}

	t := d.Result
	if t == nil {
		t = &Table{}
	}
	cur := &Cursor{t: t, pos: -1}
	d.cursors = append(d.cursors, cur)
	return cur, nil
}

func (c *Command) Close() error {
	c.closed = true
	return nil
}

// Param remembers which metadata was set.
type Param struct {
	name      string
	value     any
	DbType    *pool.DbType
	Size      *int
	Precision *uint8
	Scale     *uint8
	dir       pool.Direction
	DirSet    bool
}

func (p *Param) Name() string        { return p.name }
func (p *Param) SetName(name string) { p.name = name }
func (p *Param) Value() any          { return p.value }
func (p *Param) SetValue(v any)      { p.value = v }
func (p *Param) SetDbType(t pool.DbType) {
	p.DbType = &t
}
func (p *Param) SetSize(n int)        { p.Size = &n }
func (p *Param) SetPrecision(v uint8) { p.Precision = &v }
func (p *Param) SetScale(v uint8)     { p.Scale = &v }

func (p *Param) Direction() pool.Direction { return p.dir }

func (p *Param) SetDirection(d pool.Direction) {
	p.dir = d
	p.DirSet = true
}

// Cursor walks a Table.
type Cursor struct {
	t      *Table
	pos    int
	closed bool
}

func (c *Cursor) ColumnCount() int        { return len(c.t.Columns) }
func (c *Cursor) ColumnName(i int) string { return c.t.Columns[i] }
func (c *Cursor) IsNull(i int) bool       { return c.t.Rows[c.pos][i] == nil }
func (c *Cursor) Value(i int) any         { return c.t.Rows[c.pos][i] }
func (c *Cursor) Err() error              { return nil }

func (c *Cursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.t.Rows) {
		return false
	}
	c.pos++
	return true
}

func (c *Cursor) Close() error {
	c.closed = true
	return nil
}
