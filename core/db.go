package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shrek82/jmapper/logger"
	"github.com/shrek82/jmapper/pool"
)

// Options defines the configuration for the DB connection pool.
type Options = pool.Options

// DefaultCommandTimeout is the command timeout in seconds used when none is set.
const DefaultCommandTimeout = 500

// DB is the main entry point. It hands out connections for queries built
// with NewQuery and carries the logger, middleware and query defaults.
type DB struct {
	opener        pool.Opener
	connString    string
	logger        logger.Logger
	middlewares   []QueryMiddleware
	timeout       int
	ignoreMissing bool
}

// Open initializes a new DB on a registered database/sql driver and checks
// that a connection can be established.
func Open(driver, dsn string, opts *Options) (*DB, error) {
	o, err := pool.NewSQLOpener(driver, opts)
	if err != nil {
		return nil, err
	}

	db := NewDB(o, dsn)
	if err := db.Ping(context.Background()); err != nil {
		_ = o.Close()
		return nil, err
	}
	return db, nil
}

// NewDB wraps any Opener. connString is used by queries that do not set
// their own.
func NewDB(opener pool.Opener, connString string) *DB {
	return &DB{
		opener:        opener,
		connString:    connString,
		logger:        logger.NewStdLogger(),
		timeout:       DefaultCommandTimeout,
		ignoreMissing: true,
	}
}

// Ping opens and closes one connection.
func (db *DB) Ping(ctx context.Context) error {
	conn, err := db.connect(db.connString)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Open(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return nil
}

// Close shuts the middleware down and closes the opener when it holds
// resources.
func (db *DB) Close() error {
	var errs []error
	for _, m := range db.middlewares {
		if err := m.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := db.opener.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetLogger sets a custom logger for the DB. Nil disables logging.
func (db *DB) SetLogger(l logger.Logger) {
	db.logger = l
}

// Logger returns the DB logger, possibly nil.
func (db *DB) Logger() logger.Logger {
	return db.logger
}

// SetCommandTimeout sets the default timeout in seconds for new queries.
func (db *DB) SetCommandTimeout(seconds int) {
	db.timeout = seconds
}

// SetIgnoreMissingColumn sets the default missing-column policy for new queries.
func (db *DB) SetIgnoreMissingColumn(ignore bool) {
	db.ignoreMissing = ignore
}

// Opener returns the connection source.
func (db *DB) Opener() pool.Opener {
	return db.opener
}

// Use registers middleware. Each component is initialized before it is added.
func (db *DB) Use(middlewares ...QueryMiddleware) error {
	for _, m := range middlewares {
		if err := m.Init(db); err != nil {
			return fmt.Errorf("middleware %s: %w", m.Name(), err)
		}
		db.middlewares = append(db.middlewares, m)
	}
	return nil
}

// Begin starts a transaction on a new connection. The connection is
// released by Commit or Rollback.
func (db *DB) Begin(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	conn, err := db.connect(db.connString)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tx, err := conn.BeginTx(ctx, opts)
	db.logSQL("BEGIN", time.Since(start))
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Tx{db: db, conn: conn, tx: tx}, nil
}

// Transaction executes fn within a transaction, committing when fn returns
// nil and rolling back otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := db.Begin(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}

func (db *DB) connect(connString string) (pool.Conn, error) {
	if db.opener == nil {
		return nil, fmt.Errorf("%w: no opener configured", ErrConnectionFailed)
	}
	conn, err := db.opener.Connect(connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return conn, nil
}

// logSQL logs the SQL execution if a logger is set.
func (db *DB) logSQL(sql string, duration time.Duration, args ...any) {
	if db.logger != nil {
		db.logger.SQL(sql, duration, args...)
	}
}

func (db *DB) loggerFor(stmt *Statement) logger.Logger {
	if db.logger == nil || len(stmt.Fields) == 0 {
		return db.logger
	}
	return db.logger.WithFields(stmt.Fields)
}
