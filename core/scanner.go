package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// TimeScanner scans DATETIME columns that some drivers return as text. Empty
// strings and MySQL zero dates scan as null.
type TimeScanner struct {
	Value time.Time
	Valid bool
}

func (ts *TimeScanner) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Value, ts.Valid = time.Time{}, false
		return nil
	case time.Time:
		ts.Value, ts.Valid = v, true
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	}

	t, err := cast.ToTimeInDefaultLocationE(src, time.Local)
	if err != nil {
		return fmt.Errorf("cannot scan %T into TimeScanner: %w", src, err)
	}
	ts.Value, ts.Valid = t, true
	return nil
}

func (ts *TimeScanner) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		ts.Value, ts.Valid = time.Time{}, false
		return nil
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.Local)
	if err != nil {
		return err
	}
	ts.Value, ts.Valid = t, true
	return nil
}
