package pool

import (
	"context"
	"database/sql"
	"fmt"
)

type sqlConn struct {
	opener *SQLOpener
	dsn    string
	conn   *sql.Conn
}

// WrapConn adopts an already acquired *sql.Conn. Closing the returned Conn
// closes c.
func (o *SQLOpener) WrapConn(c *sql.Conn) Conn {
	return &sqlConn{opener: o, conn: c}
}

func (c *sqlConn) IsOpen() bool {
	return c.conn != nil
}

func (c *sqlConn) Open(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	db, err := c.opener.DB(c.dsn)
	if err != nil {
		return err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *sqlConn) CreateCommand() Command {
	return &sqlCommand{conn: c}
}

func (c *sqlConn) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	tx, err := c.conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &sqlTx{conn: c, tx: tx}, nil
}

func (c *sqlConn) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// sqlTx represents a database transaction bound to one sqlConn.
type sqlTx struct {
	conn *sqlConn
	tx   *sql.Tx
}

func (t *sqlTx) Conn() Conn {
	return t.conn
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("transaction rollback failed: %w", err)
	}
	return nil
}
