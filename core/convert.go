package core

import (
	"database/sql"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	textType    = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// scalar turns driver bytes into a string so text columns convert like
// strings.
func scalar(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// assign stores raw into dst. Nil clears dst to its zero value.
func assign(dst reflect.Value, raw any) error {
	t := dst.Type()
	if raw == nil {
		dst.Set(reflect.Zero(t))
		return nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		dst.Set(rv)
		return nil
	}

	switch {
	case t.Kind() == reflect.Ptr:
		v := reflect.New(t.Elem())
		if err := assign(v.Elem(), raw); err != nil {
			return err
		}
		dst.Set(v)
		return nil

	case reflect.PointerTo(t).Implements(scannerType):
		return dst.Addr().Interface().(sql.Scanner).Scan(raw)

	case t == timeType:
		tm, err := cast.ToTimeInDefaultLocationE(scalar(raw), time.Local)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(tm))
		return nil

	case isEnum(t):
		return assignEnum(dst, raw)

	case reflect.PointerTo(t).Implements(textType) && isText(raw):
		return dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(fmt.Sprint(scalar(raw))))
	}

	raw = scalar(raw)
	switch t.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return err
		}
		dst.SetString(s)
	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(raw)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, t)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toUint64(raw)
		if err != nil {
			return err
		}
		if dst.OverflowUint(n) {
			return fmt.Errorf("value %d overflows %s", n, t)
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("unsupported destination type %s", t)
		}
		s, err := cast.ToStringE(raw)
		if err != nil {
			return err
		}
		dst.SetBytes([]byte(s))
	default:
		v := reflect.ValueOf(raw)
		if !v.Type().ConvertibleTo(t) {
			return fmt.Errorf("unsupported destination type %s", t)
		}
		dst.Set(v.Convert(t))
	}
	return nil
}

// isEnum reports named integer types, which take the numeric conversion path.
func isEnum(t reflect.Type) bool {
	if t.PkgPath() == "" {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func assignEnum(dst reflect.Value, raw any) error {
	t := dst.Type()
	if isText(raw) && reflect.PointerTo(t).Implements(textType) {
		if _, err := toInt64(raw); err != nil {
			return dst.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(fmt.Sprint(scalar(raw))))
		}
	}

	n, err := toInt64(raw)
	if err != nil {
		return fmt.Errorf("enum %s: %w", t, err)
	}
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("enum %s: value %d out of range", t, n)
		}
		dst.SetUint(uint64(n))
	default:
		if dst.OverflowInt(n) {
			return fmt.Errorf("enum %s: value %d out of range", t, n)
		}
		dst.SetInt(n)
	}
	return nil
}

func isText(v any) bool {
	switch v.(type) {
	case string, []byte:
		return true
	}
	return false
}

// toInt64 converts integral values only. Text is read in base 10 and
// fractional or out of range numbers are errors.
func toInt64(v any) (int64, error) {
	switch x := scalar(v).(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case float64:
		return floatToInt64(x)
	case float32:
		return floatToInt64(float64(x))
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", x)
		}
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", x)
		}
		return int64(x), nil
	}
	return cast.ToInt64E(v)
}

func toUint64(v any) (uint64, error) {
	switch x := scalar(v).(type) {
	case string:
		return strconv.ParseUint(strings.TrimSpace(x), 10, 64)
	case float64:
		return floatToUint64(x)
	case float32:
		return floatToUint64(float64(x))
	case int, int8, int16, int32, int64:
		if n := reflect.ValueOf(x).Int(); n < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned type", n)
		}
	}
	return cast.ToUint64E(v)
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("value %v is not representable as int64", f)
	}
	return int64(f), nil
}

func floatToUint64(f float64) (uint64, error) {
	if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, fmt.Errorf("value %v is not representable as uint64", f)
	}
	return uint64(f), nil
}
