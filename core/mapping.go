package core

import (
	"fmt"
	"reflect"

	"github.com/shrek82/jmapper/model"
)

// Binding is how one property gets its value: a ColumnBinding or a
// ComputedBinding.
type Binding interface {
	binding()
}

// ColumnBinding reads the property from a named column.
type ColumnBinding struct {
	Column string
}

// ComputedBinding computes the property from the whole row. It does not need
// a column of its own.
type ComputedBinding struct {
	Fn func(row RowValues) (any, error)
}

func (ColumnBinding) binding()   {}
func (ComputedBinding) binding() {}

// PropertyMapping binds one destination property. Mappings are identified by
// Property.
type PropertyMapping struct {
	Property string
	Binding  Binding
}

// strategy is either perProperty or wholeRow.
type strategy interface {
	strategy()
}

type perProperty struct {
	mappings []PropertyMapping
}

type wholeRow[T any] struct {
	fn func(row RowValues) (T, error)
}

func (perProperty) strategy() {}
func (wholeRow[T]) strategy() {}

// putMapping replaces an existing mapping for the same property or appends.
func putMapping(list []PropertyMapping, pm PropertyMapping) []PropertyMapping {
	for i := range list {
		if list[i].Property == pm.Property {
			list[i] = pm
			return list
		}
	}
	return append(list, pm)
}

// propertyOf resolves a selector such as func(c *Customer) any { return &c.Zip }
// to the field name it addresses.
func propertyOf[T any](sel func(*T) any) (name string, err error) {
	if sel == nil {
		return "", fmt.Errorf("%w: nil property selector", ErrInvalidMapping)
	}

	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return "", fmt.Errorf("%w: destination %s is not a struct", ErrInvalidMapping, typ)
	}
	m, err := model.GetModel(typ)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}

	defer func() {
		if r := recover(); r != nil {
			name, err = "", fmt.Errorf("%w: selector panicked: %v", ErrInvalidMapping, r)
		}
	}()

	base := reflect.New(typ)
	rv := reflect.ValueOf(sel(base.Interface().(*T)))
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return "", fmt.Errorf("%w: selector must return the address of a field, got %s", ErrInvalidMapping, describe(rv))
	}

	start, addr := base.Pointer(), rv.Pointer()
	if addr < start || addr >= start+typ.Size() {
		return "", fmt.Errorf("%w: selector does not address a field of %s", ErrInvalidMapping, typ)
	}
	f, ok := m.FieldByOffset(addr-start, rv.Type().Elem())
	if !ok {
		return "", fmt.Errorf("%w: selector does not address a mappable field of %s", ErrInvalidMapping, typ)
	}
	return f.Name, nil
}

func describe(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}
	return rv.Type().String()
}
