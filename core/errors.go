package core

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrColumnNotFound is returned when a mapped column is absent and missing columns are not ignored.
	ErrColumnNotFound = errors.New("column not found")
	// ErrConversion is returned when a cell value cannot be converted to its destination type.
	ErrConversion = errors.New("conversion failed")
	// ErrInvalidMapping is returned when a property selector does not denote a field of the destination.
	ErrInvalidMapping = errors.New("invalid mapping")
	// ErrInvalidParameter is returned when a query parameter is malformed.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNoCommandText is returned when neither SQL text nor a stored procedure name was set.
	ErrNoCommandText = errors.New("no command text")
	// ErrConnectionFailed is returned when the database connection cannot be established.
	ErrConnectionFailed = errors.New("connection failed")
)

// ColumnNotFoundError names the column a mapping expected in the result set.
type ColumnNotFoundError struct {
	Column   string
	Property string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("Column '%s' was not found.", e.Column)
}

func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// ConversionError reports a value that could not be assigned. Row is the
// zero-based row index, or -1 outside materialization.
type ConversionError struct {
	Row      int
	Property string
	Column   string
	Value    any
	Type     reflect.Type
	Err      error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %T", e.Value)
	if e.Column != "" {
		msg += fmt.Sprintf(" from column %q", e.Column)
	}
	if e.Type != nil {
		msg += fmt.Sprintf(" to %s", e.Type)
	}
	if e.Property != "" {
		msg += fmt.Sprintf(" for property %s", e.Property)
	}
	if e.Row >= 0 {
		msg = fmt.Sprintf("row %d: %s", e.Row, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// ConfigError is recorded by a builder method that received a bad argument.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
