package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shrek82/jmapper/dialect"
	"github.com/shrek82/jmapper/pool"
	"github.com/shrek82/jmapper/validator"
)

// QueryParameter is a named value bound to a command. Nil metadata fields are
// left at the driver's defaults.
type QueryParameter struct {
	Name      string
	Value     any
	DataType  *DataType
	Size      *int
	Precision *uint8
	Scale     *uint8
	Direction *Direction
}

// NewParameter returns an input parameter without metadata.
func NewParameter(name string, value any) QueryParameter {
	return QueryParameter{Name: name, Value: value}
}

func (p QueryParameter) WithDataType(t DataType) QueryParameter {
	p.DataType = &t
	return p
}

func (p QueryParameter) WithSize(n int) QueryParameter {
	p.Size = &n
	return p
}

func (p QueryParameter) WithPrecision(n uint8) QueryParameter {
	p.Precision = &n
	return p
}

func (p QueryParameter) WithScale(n uint8) QueryParameter {
	p.Scale = &n
	return p
}

func (p QueryParameter) WithDirection(d Direction) QueryParameter {
	p.Direction = &d
	return p
}

// EffectiveDirection returns the declared direction, Input when unset.
func (p QueryParameter) EffectiveDirection() Direction {
	if p.Direction == nil {
		return DirectionInput
	}
	return *p.Direction
}

// Validate checks the name and the numeric metadata.
func (p QueryParameter) Validate() error {
	if err := validator.Validate(p.Name, validator.Required.Validate, validator.Identifier.Validate); err != nil {
		return fmt.Errorf("%w: name %v", ErrInvalidParameter, err)
	}
	if p.Size != nil {
		if err := validator.Range(0, math.MaxInt32).Validate(*p.Size); err != nil {
			return fmt.Errorf("%w %s: size %v", ErrInvalidParameter, p.Name, err)
		}
	}
	if p.Precision != nil && p.Scale != nil && *p.Scale > *p.Precision {
		return fmt.Errorf("%w %s: scale %d exceeds precision %d", ErrInvalidParameter, p.Name, *p.Scale, *p.Precision)
	}
	if p.Direction != nil {
		if err := validator.Range(float64(DirectionInput), float64(DirectionReturnValue)).Validate(int(*p.Direction)); err != nil {
			return fmt.Errorf("%w %s: direction %v", ErrInvalidParameter, p.Name, err)
		}
	}
	return nil
}

// Matches compares names ignoring case and the @, : or $ marker.
func (p QueryParameter) Matches(name string) bool {
	return equalFold(dialect.TrimPrefix(p.Name), dialect.TrimPrefix(name))
}

// apply copies the parameter onto a driver parameter. Only metadata that was
// set is applied.
func (p QueryParameter) apply(dp pool.Param) {
	dp.SetName(p.Name)
	dp.SetValue(p.Value)
	if p.DataType != nil {
		dp.SetDbType(p.DataType.driver())
	}
	if p.Size != nil {
		dp.SetSize(*p.Size)
	}
	if p.Precision != nil {
		dp.SetPrecision(*p.Precision)
	}
	if p.Scale != nil {
		dp.SetScale(*p.Scale)
	}
	if p.Direction != nil {
		dp.SetDirection(p.Direction.driver())
	}
}

// snapshot reads a driver parameter back after execution.
func snapshot(dp pool.Param) QueryParameter {
	d := directionFromDriver(dp.Direction())
	return QueryParameter{
		Name:      dp.Name(),
		Value:     dp.Value(),
		Direction: &d,
	}
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
