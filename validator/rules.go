package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

// --- Required ---

type requiredRule struct {
	BaseRule
}

func (r *requiredRule) Validate(v any) error {
	if !r.ShouldValidate(v) {
		return nil
	}
	if isZeroValue(v) {
		return r.FormatError(fmt.Errorf("is required"))
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return r.FormatError(fmt.Errorf("is required"))
	}
	return nil
}

func (r *requiredRule) Msg(msg string) Rule         { nr := *r; nr.SetMsg(msg); return &nr }
func (r *requiredRule) Optional() Rule              { nr := *r; nr.SetOptional(); return &nr }
func (r *requiredRule) When(fn func(any) bool) Rule { nr := *r; nr.SetWhen(fn); return &nr }

var Required Rule = &requiredRule{}

// --- MaxLen ---

type maxLenRule struct {
	BaseRule
	max int
}

func (r *maxLenRule) Validate(v any) error {
	if !r.ShouldValidate(v) {
		return nil
	}
	s, ok := indirect(v).(string)
	if !ok {
		return nil
	}
	if utf8.RuneCountInString(s) > r.max {
		return r.FormatError(fmt.Errorf("length must be at most %d", r.max))
	}
	return nil
}

func (r *maxLenRule) Msg(msg string) Rule         { nr := *r; nr.SetMsg(msg); return &nr }
func (r *maxLenRule) Optional() Rule              { nr := *r; nr.SetOptional(); return &nr }
func (r *maxLenRule) When(fn func(any) bool) Rule { nr := *r; nr.SetWhen(fn); return &nr }

func MaxLen(max int) Rule {
	return &maxLenRule{max: max}
}

// --- Range ---

type rangeRule struct {
	BaseRule
	min, max float64
}

// Validate checks numeric values, including durations. Nil pointers pass.
func (r *rangeRule) Validate(v any) error {
	if !r.ShouldValidate(v) {
		return nil
	}
	val, ok := reflectToFloat(indirect(v))
	if !ok {
		return nil
	}
	if val < r.min || val > r.max {
		return r.FormatError(fmt.Errorf("value must be between %v and %v", r.min, r.max))
	}
	return nil
}

func (r *rangeRule) Msg(msg string) Rule         { nr := *r; nr.SetMsg(msg); return &nr }
func (r *rangeRule) Optional() Rule              { nr := *r; nr.SetOptional(); return &nr }
func (r *rangeRule) When(fn func(any) bool) Rule { nr := *r; nr.SetWhen(fn); return &nr }

func Range(min, max float64) Rule {
	return &rangeRule{min: min, max: max}
}

func reflectToFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// --- In ---

type inRule struct {
	BaseRule
	values []any
}

func (r *inRule) Validate(v any) error {
	if !r.ShouldValidate(v) {
		return nil
	}
	v = indirect(v)
	for _, val := range r.values {
		if val == v {
			return nil
		}
	}
	return r.FormatError(fmt.Errorf("value %v is not in the allowed list", v))
}

func (r *inRule) Msg(msg string) Rule         { nr := *r; nr.SetMsg(msg); return &nr }
func (r *inRule) Optional() Rule              { nr := *r; nr.SetOptional(); return &nr }
func (r *inRule) When(fn func(any) bool) Rule { nr := *r; nr.SetWhen(fn); return &nr }

func In(values ...any) Rule {
	return &inRule{values: values}
}

// --- Regexp ---

type regexpRule struct {
	BaseRule
	re *regexp.Regexp
}

func (r *regexpRule) Validate(v any) error {
	if !r.ShouldValidate(v) {
		return nil
	}
	s, ok := indirect(v).(string)
	if !ok {
		return nil
	}
	if !r.re.MatchString(s) {
		return r.FormatError(fmt.Errorf("%q does not match %s", s, r.re))
	}
	return nil
}

func (r *regexpRule) Msg(msg string) Rule         { nr := *r; nr.SetMsg(msg); return &nr }
func (r *regexpRule) Optional() Rule              { nr := *r; nr.SetOptional(); return &nr }
func (r *regexpRule) When(fn func(any) bool) Rule { nr := *r; nr.SetWhen(fn); return &nr }

// Regexp panics if pattern does not compile.
func Regexp(pattern string) Rule {
	return &regexpRule{re: regexp.MustCompile(pattern)}
}

// --- Identifier ---

// Identifier accepts a parameter or column name with an optional @, : or $
// marker.
var Identifier = Regexp(`^[@:$]?[A-Za-z_][A-Za-z0-9_]*$`)
