package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shrek82/jmapper/core"
)

// record is one result row in column order.
type record struct {
	Columns []string
	Values  []any
}

func newRecord(row core.RowValues, strict bool) (record, error) {
	r := record{Columns: make([]string, len(row)), Values: make([]any, len(row))}
	seen := make(map[string]bool, len(row))
	for i, cv := range row {
		key := strings.ToLower(cv.Column)
		if strict && seen[key] {
			return record{}, fmt.Errorf("duplicate column %q", cv.Column)
		}
		seen[key] = true
		r.Columns[i] = cv.Column
		r.Values[i] = display(cv.Value)
	}
	return r, nil
}

func display(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return v
}

func (r record) MarshalJSON() ([]byte, error) {
	// keep column order
	buf := []byte{'{'}
	for i, c := range r.Columns {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf = append(append(append(buf, k...), ':'), v...)
	}
	return append(buf, '}'), nil
}

func outputParams(res *core.QueryResult[record]) map[string]any {
	out := make(map[string]any)
	for _, p := range res.Parameters {
		if p.EffectiveDirection() != core.DirectionInput {
			out[p.Name] = display(p.Value)
		}
	}
	return out
}

func writeJSON(w io.Writer, res *core.QueryResult[record]) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"rows":    res.List,
		"outputs": outputParams(res),
	})
}

func writeText(w io.Writer, res *core.QueryResult[record]) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(res.List) > 0 {
		for i, c := range res.List[0].Columns {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	}
	for _, r := range res.List {
		for i, v := range r.Values {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				fmt.Fprint(tw, "NULL")
			} else {
				fmt.Fprint(tw, v)
			}
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "(%d rows)\n", len(res.List))
	outs := outputParams(res)
	names := make([]string, 0, len(outs))
	for name := range outs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %v\n", name, outs[name])
	}
	return nil
}
