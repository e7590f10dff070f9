package model

import (
	"reflect"
)

// Field represents one settable destination property
type Field struct {
	Name   string       // Struct field name, the property identity
	Column string       // Default source column
	Type   reflect.Type // Field type
	Index  []int        // Index path for reflect.Value.FieldByIndex
	Offset uintptr      // Byte offset from the start of the outermost struct
	Tag    string       // Raw tag string
}

// Value returns the settable field of v, which must be the addressable struct
// the model was built from.
func (f *Field) Value(v reflect.Value) reflect.Value {
	return v.FieldByIndex(f.Index)
}
