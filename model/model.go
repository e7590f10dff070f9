package model

import (
	"fmt"
	"reflect"
	"sync"
)

// Model describes the settable fields of a destination struct type.
type Model struct {
	Type     reflect.Type
	Fields   []*Field
	FieldMap map[string]*Field // keyed by field name
}

var modelCache sync.Map

// GetModel returns the cached metadata for a struct type, building it on
// first use. Pointer types are dereferenced.
func GetModel(typ reflect.Type) (*Model, error) {
	if typ == nil {
		return nil, fmt.Errorf("type is nil")
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("destination must be a struct or pointer to struct, got %s", typ.Kind())
	}

	if cached, ok := modelCache.Load(typ); ok {
		return cached.(*Model), nil
	}

	m := parseModel(typ)
	actual, _ := modelCache.LoadOrStore(typ, m)
	return actual.(*Model), nil
}

// FieldByOffset finds the field stored at a byte offset from the start of
// the struct with the given type.
func (m *Model) FieldByOffset(offset uintptr, typ reflect.Type) (*Field, bool) {
	for _, f := range m.Fields {
		if f.Offset == offset && f.Type == typ {
			return f, true
		}
	}
	return nil, false
}

func parseModel(typ reflect.Type) *Model {
	m := &Model{
		Type:     typ,
		FieldMap: make(map[string]*Field),
	}
	collectFields(m, typ, nil, 0)
	return m
}

// collectFields walks typ, flattening embedded structs. Fields of an outer
// struct shadow promoted fields with the same name.
func collectFields(m *Model, typ reflect.Type, index []int, base uintptr) {
	var embedded []reflect.StructField

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			tag := ParseTag(sf.Tag.Get(TagName))
			if !tag.Skip && tag.Column == "" {
				embedded = append(embedded, sf)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		tag := ParseTag(sf.Tag.Get(TagName))
		if tag.Skip {
			continue
		}
		if _, dup := m.FieldMap[sf.Name]; dup {
			continue
		}

		column := tag.Column
		if column == "" {
			column = sf.Name
		}

		field := &Field{
			Name:   sf.Name,
			Column: column,
			Type:   sf.Type,
			Index:  append(append([]int{}, index...), i),
			Offset: base + sf.Offset,
			Tag:    sf.Tag.Get(TagName),
		}
		m.Fields = append(m.Fields, field)
		m.FieldMap[field.Name] = field
	}

	for _, sf := range embedded {
		collectFields(m, sf.Type, append(append([]int{}, index...), sf.Index...), base+sf.Offset)
	}
}
