package pool

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shrek82/jmapper/dialect"
)

// ErrConnClosed is returned when a command runs on a connection that is not open.
var ErrConnClosed = errors.New("pool: connection is not open")

// Options defines the configuration for the underlying connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLOpener implements Opener on top of database/sql. It keeps one *sql.DB
// per connection string; every Conn it hands out is a dedicated *sql.Conn
// taken from that pool.
type SQLOpener struct {
	driver  string
	dialect dialect.Dialect
	opts    *Options

	mu  sync.Mutex
	dbs map[string]*sql.DB
}

// NewSQLOpener creates an opener for a registered database/sql driver name.
func NewSQLOpener(driver string, opts *Options) (*SQLOpener, error) {
	d, ok := dialect.Get(driver)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %s", driver)
	}
	return &SQLOpener{
		driver:  driver,
		dialect: d,
		opts:    opts,
		dbs:     make(map[string]*sql.DB),
	}, nil
}

// Dialect returns the dialect commands are rendered with.
func (o *SQLOpener) Dialect() dialect.Dialect {
	return o.dialect
}

// Connect returns an unopened connection for the connection string.
func (o *SQLOpener) Connect(connString string) (Conn, error) {
	return &sqlConn{opener: o, dsn: connString}, nil
}

// DB returns the pool for a connection string, creating it on first use.
func (o *SQLOpener) DB(dsn string) (*sql.DB, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if db, ok := o.dbs[dsn]; ok {
		return db, nil
	}

	db, err := sql.Open(o.driver, dsn)
	if err != nil {
		return nil, err
	}
	if o.opts != nil {
		if o.opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(o.opts.MaxOpenConns)
		}
		if o.opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(o.opts.MaxIdleConns)
		}
		if o.opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(o.opts.ConnMaxLifetime)
		}
	}
	o.dbs[dsn] = db
	return db, nil
}

// Close closes every pool the opener created.
func (o *SQLOpener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for dsn, db := range o.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(o.dbs, dsn)
	}
	return errors.Join(errs...)
}
