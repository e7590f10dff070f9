package jmapper

import (
	"github.com/shrek82/jmapper/config"
	"github.com/shrek82/jmapper/core"
	"github.com/shrek82/jmapper/logger"
)

// Re-export core types and functions
type DB = core.DB
type Tx = core.Tx
type Options = core.Options
type RowValues = core.RowValues
type QueryParameter = core.QueryParameter
type Direction = core.Direction
type DataType = core.DataType

const (
	DirectionInput       = core.DirectionInput
	DirectionOutput      = core.DirectionOutput
	DirectionInputOutput = core.DirectionInputOutput
	DirectionReturnValue = core.DirectionReturnValue
)

var (
	Open         = core.Open
	NewDB        = core.NewDB
	NewParameter = core.NewParameter

	ErrColumnNotFound   = core.ErrColumnNotFound
	ErrConversion       = core.ErrConversion
	ErrInvalidMapping   = core.ErrInvalidMapping
	ErrInvalidParameter = core.ErrInvalidParameter
	ErrNoCommandText    = core.ErrNoCommandText
	ErrConnectionFailed = core.ErrConnectionFailed
)

// NewQuery starts a query that materializes rows into T.
func NewQuery[T any](db *DB) *core.QueryBuilder[T] {
	return core.NewQuery[T](db)
}

// OpenProfile opens the named connection profile of cfg and applies its
// query defaults and logger settings. An empty name selects the default
// profile.
func OpenProfile(cfg *config.Config, name string) (*DB, error) {
	c, err := cfg.Connection(name)
	if err != nil {
		return nil, err
	}

	db, err := core.Open(c.Driver, c.DSN, &core.Options{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	db.SetCommandTimeout(cfg.CommandTimeout)
	db.SetIgnoreMissingColumn(cfg.IgnoreMissingColumn)

	l := logger.NewStdLogger()
	l.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.Format != "" {
		l.SetFormat(logger.LogFormat(cfg.Log.Format))
	}
	db.SetLogger(l)
	return db, nil
}
