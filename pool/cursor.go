package pool

import (
	"context"
	"database/sql"
)

// sqlCursor reads *sql.Rows one row at a time into untyped cells.
type sqlCursor struct {
	rows   *sql.Rows
	cancel context.CancelFunc
	cols   []string
	vals   []any
	dest   []any
	err    error
	closed bool
}

func newCursor(rows *sql.Rows, cancel context.CancelFunc) (*sqlCursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	c := &sqlCursor{
		rows:   rows,
		cancel: cancel,
		cols:   cols,
		vals:   make([]any, len(cols)),
		dest:   make([]any, len(cols)),
	}
	for i := range c.vals {
		c.dest[i] = &c.vals[i]
	}
	return c, nil
}

func (c *sqlCursor) ColumnCount() int        { return len(c.cols) }
func (c *sqlCursor) ColumnName(i int) string { return c.cols[i] }
func (c *sqlCursor) IsNull(i int) bool       { return c.vals[i] == nil }
func (c *sqlCursor) Value(i int) any         { return c.vals[i] }

func (c *sqlCursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	if !c.rows.Next() {
		return false
	}
	for i := range c.vals {
		c.vals[i] = nil
	}
	if err := c.rows.Scan(c.dest...); err != nil {
		c.err = err
		return false
	}
	return true
}

func (c *sqlCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *sqlCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.rows.Close()
	c.cancel()
	return err
}
