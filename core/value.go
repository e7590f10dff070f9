package core

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

// ColumnValue is one cell read from a result row. Value is nil for a
// database null.
type ColumnValue struct {
	Column string
	Value  any
}

// RowValues holds every column of one row in cursor order.
type RowValues []ColumnValue

// Lookup returns the first column whose name matches ignoring case.
func (r RowValues) Lookup(name string) (ColumnValue, bool) {
	for _, cv := range r {
		if equalFold(cv.Column, name) {
			return cv, true
		}
	}
	return ColumnValue{}, false
}

// Value returns the raw value of a column, nil when absent or null.
func (r RowValues) Value(name string) any {
	cv, _ := r.Lookup(name)
	return cv.Value
}

// String is GetString without the error: "" when absent, null or not
// convertible.
func (r RowValues) String(name string) string {
	ns, _ := r.GetString(name)
	return ns.String
}

func (r RowValues) present(name string) (any, bool) {
	cv, ok := r.Lookup(name)
	if !ok || cv.Value == nil {
		return nil, false
	}
	return cv.Value, true
}

func (r RowValues) convErr(name string, v any, typ reflect.Type, err error) error {
	return &ConversionError{Row: -1, Column: name, Value: v, Type: typ, Err: err}
}

func (r RowValues) GetString(name string) (sql.NullString, error) {
	v, ok := r.present(name)
	if !ok {
		return sql.NullString{}, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return sql.NullString{}, r.convErr(name, v, reflect.TypeOf(""), err)
	}
	return sql.NullString{String: s, Valid: true}, nil
}

func (r RowValues) GetInteger(name string) (sql.NullInt32, error) {
	v, ok := r.present(name)
	if !ok {
		return sql.NullInt32{}, nil
	}
	n, err := toInt64(v)
	if err == nil && (n < math.MinInt32 || n > math.MaxInt32) {
		err = fmt.Errorf("value %d overflows int32", n)
	}
	if err != nil {
		return sql.NullInt32{}, r.convErr(name, v, reflect.TypeOf(int32(0)), err)
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}, nil
}

func (r RowValues) GetLong(name string) (sql.NullInt64, error) {
	v, ok := r.present(name)
	if !ok {
		return sql.NullInt64{}, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return sql.NullInt64{}, r.convErr(name, v, reflect.TypeOf(int64(0)), err)
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

func (r RowValues) GetByte(name string) (sql.NullByte, error) {
	v, ok := r.present(name)
	if !ok {
		return sql.NullByte{}, nil
	}
	n, err := toInt64(v)
	if err == nil && (n < 0 || n > math.MaxUint8) {
		err = fmt.Errorf("value %d overflows byte", n)
	}
	if err != nil {
		return sql.NullByte{}, r.convErr(name, v, reflect.TypeOf(byte(0)), err)
	}
	return sql.NullByte{Byte: byte(n), Valid: true}, nil
}

// GetDecimal reads a numeric column as float64.
func (r RowValues) GetDecimal(name string) (sql.NullFloat64, error) {
	v, ok := r.present(name)
	if !ok {
		return sql.NullFloat64{}, nil
	}
	f, err := cast.ToFloat64E(scalar(v))
	if err != nil {
		return sql.NullFloat64{}, r.convErr(name, v, reflect.TypeOf(float64(0)), err)
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

func (r RowValues) GetDateTime(name string) (sql.NullTime, error) {
	v, ok := r.present(name)
	if !ok {
		return sql.NullTime{}, nil
	}
	t, err := cast.ToTimeInDefaultLocationE(scalar(v), time.Local)
	if err != nil {
		return sql.NullTime{}, r.convErr(name, v, timeType, err)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func (r RowValues) GetBoolean(name string) (sql.NullBool, error) {
	v, ok := r.present(name)
	if !ok {
		return sql.NullBool{}, nil
	}
	b, err := cast.ToBoolE(scalar(v))
	if err != nil {
		return sql.NullBool{}, r.convErr(name, v, reflect.TypeOf(false), err)
	}
	return sql.NullBool{Bool: b, Valid: true}, nil
}
