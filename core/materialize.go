package core

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/shrek82/jmapper/model"
	"github.com/shrek82/jmapper/pool"
)

// boundMapping is a property mapping resolved against one cursor.
type boundMapping struct {
	field   *model.Field
	column  string
	ordinal int // -1 when the column is absent
	fn      func(RowValues) (any, error)
}

// columnOrdinals maps lower-cased column names to their first ordinal.
func columnOrdinals(cur pool.Cursor) map[string]int {
	n := cur.ColumnCount()
	idx := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := strings.ToLower(cur.ColumnName(i))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// resolve binds every field of m, synthesizing a column mapping for fields
// without a registered one.
func resolve(m *model.Model, mappings []PropertyMapping, cur pool.Cursor, ignoreMissing bool) ([]boundMapping, error) {
	registered := make(map[string]Binding, len(mappings))
	for _, pm := range mappings {
		registered[pm.Property] = pm.Binding
	}
	ordinals := columnOrdinals(cur)

	bound := make([]boundMapping, 0, len(m.Fields))
	for _, f := range m.Fields {
		b, ok := registered[f.Name]
		if !ok {
			b = ColumnBinding{Column: f.Column}
		}

		bm := boundMapping{field: f, ordinal: -1}
		switch b := b.(type) {
		case ColumnBinding:
			bm.column = b.Column
			if i, ok := ordinals[strings.ToLower(b.Column)]; ok {
				bm.ordinal = i
			}
		case ComputedBinding:
			bm.fn = b.Fn
		}

		if bm.ordinal < 0 && bm.fn == nil && !ignoreMissing {
			return nil, &ColumnNotFoundError{Column: bm.column, Property: f.Name}
		}
		bound = append(bound, bm)
	}
	return bound, nil
}

// readRow copies the current row into a RowValues.
func readRow(cur pool.Cursor) RowValues {
	n := cur.ColumnCount()
	row := make(RowValues, n)
	for i := 0; i < n; i++ {
		row[i].Column = cur.ColumnName(i)
		if !cur.IsNull(i) {
			row[i].Value = cur.Value(i)
		}
	}
	return row
}

// materialize drains cur into a list. The first error aborts and no partial
// list is returned.
func materialize[T any](ctx context.Context, cur pool.Cursor, s strategy, ignoreMissing bool) ([]T, error) {
	switch s := s.(type) {
	case wholeRow[T]:
		return materializeRows(ctx, cur, func(row int, item *T) error {
			v, err := s.fn(readRow(cur))
			if err != nil {
				return fmt.Errorf("row %d: %w", row, err)
			}
			*item = v
			return nil
		})

	case perProperty:
		m, err := model.GetModel(reflect.TypeFor[T]())
		if err != nil {
			return nil, &ConfigError{Op: "GetResult", Err: fmt.Errorf("%w: %v", ErrInvalidMapping, err)}
		}
		bound, err := resolve(m, s.mappings, cur, ignoreMissing)
		if err != nil {
			return nil, err
		}
		return materializeRows(ctx, cur, func(row int, item *T) error {
			return fill(cur, bound, row, reflect.ValueOf(item).Elem())
		})
	}
	return nil, fmt.Errorf("unknown mapping strategy %T", s)
}

func materializeRows[T any](ctx context.Context, cur pool.Cursor, build func(row int, item *T) error) ([]T, error) {
	list := make([]T, 0)
	for row := 0; cur.Next(); row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var item T
		if err := build(row, &item); err != nil {
			return nil, err
		}
		if err := afterFind(&item); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// fill populates one destination struct from the current row.
func fill(cur pool.Cursor, bound []boundMapping, row int, dst reflect.Value) error {
	var values RowValues
	for _, b := range bound {
		field := b.field.Value(dst)

		if b.fn != nil {
			if values == nil {
				values = readRow(cur)
			}
			v, err := b.fn(values)
			if err != nil {
				return fmt.Errorf("row %d, property %s: %w", row, b.field.Name, err)
			}
			if err := assign(field, v); err != nil {
				return &ConversionError{Row: row, Property: b.field.Name, Value: v, Type: field.Type(), Err: err}
			}
			continue
		}

		if b.ordinal < 0 {
			continue
		}
		if cur.IsNull(b.ordinal) {
			field.Set(reflect.Zero(field.Type()))
			continue
		}
		raw := cur.Value(b.ordinal)
		if err := assign(field, raw); err != nil {
			return &ConversionError{Row: row, Property: b.field.Name, Column: b.column, Value: raw, Type: field.Type(), Err: err}
		}
	}
	return nil
}
