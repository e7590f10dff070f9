package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shrek82/jmapper/core"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		in      string
		dir     core.Direction
		name    string
		value   any
		wantDir core.Direction
		typed   bool
		wantErr bool
	}{
		{in: "@Id=5", dir: core.DirectionInput, name: "@Id", value: "5", wantDir: core.DirectionInput},
		{in: "@Id:Int32=5", dir: core.DirectionInput, name: "@Id", value: "5", wantDir: core.DirectionInput, typed: true},
		{in: ":City=Oslo", dir: core.DirectionInput, name: ":City", value: "Oslo", wantDir: core.DirectionInput},
		{in: ":City:VarChar=Oslo", dir: core.DirectionInput, name: ":City", value: "Oslo", wantDir: core.DirectionInput, typed: true},
		{in: "@Total", dir: core.DirectionOutput, name: "@Total", wantDir: core.DirectionOutput},
		{in: "@Counter=1", dir: core.DirectionOutput, name: "@Counter", value: "1", wantDir: core.DirectionInputOutput},
		{in: "@Id", dir: core.DirectionInput, wantErr: true},
		{in: "@Id:Money=1", dir: core.DirectionInput, wantErr: true},
		{in: "bad name=1", dir: core.DirectionInput, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := parseParam(tt.in, tt.dir)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name != tt.name || p.Value != tt.value || p.EffectiveDirection() != tt.wantDir {
				t.Errorf("unexpected parameter: %+v", p)
			}
			if (p.DataType != nil) != tt.typed {
				t.Errorf("expected typed=%v, got %+v", tt.typed, p.DataType)
			}
		})
	}
}

func sampleResult() *core.QueryResult[record] {
	when := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	return &core.QueryResult[record]{
		List: []record{
			{Columns: []string{"customer_id", "name", "created"}, Values: []any{int64(1), nil, display(when)}},
			{Columns: []string{"customer_id", "name", "created"}, Values: []any{int64(2), "Ann", display(when)}},
		},
		Parameters: []core.QueryParameter{
			core.NewParameter("@Id", 1),
			core.NewParameter("@Total", int64(9)).WithDirection(core.DirectionOutput),
		},
	}
}

func TestNewRecord(t *testing.T) {
	row := core.RowValues{{Column: "Name", Value: []byte("Tim")}, {Column: "name", Value: "x"}}

	r, err := newRecord(row, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Values[0] != "Tim" {
		t.Errorf("expected bytes rendered as text, got %#v", r.Values[0])
	}

	if _, err := newRecord(row, true); err == nil {
		t.Error("expected duplicate column error in strict mode")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"customer_id": 1`) && !strings.Contains(buf.String(), `"customer_id":1`) {
		t.Errorf("unexpected JSON: %s", buf.String())
	}

	var out struct {
		Rows    []map[string]any `json:"rows"`
		Outputs map[string]any   `json:"outputs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Rows) != 2 || out.Outputs["@Total"] != float64(9) {
		t.Errorf("unexpected decoded output: %+v", out)
	}
	if _, ok := out.Outputs["@Id"]; ok {
		t.Error("input parameters must not be listed as outputs")
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeText(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"customer_id", "NULL", "Ann", "(2 rows)", "@Total = 9"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteStruct(t *testing.T) {
	var buf bytes.Buffer
	if err := writeStruct(&buf, "Customer", sampleResult().List); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"type Customer struct",
		"CustomerID int64 `jmapper:\"column:customer_id\"`",
		"Name string\n",
		"Created time.Time",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	if err := writeStruct(&buf, "Empty", nil); err == nil {
		t.Error("expected error without rows")
	}
}

func TestSnakeToCamel(t *testing.T) {
	cases := map[string]string{
		"customer_id": "CustomerID",
		"first_name":  "FirstName",
		"Total":       "Total",
		"1st":         "C1st",
		"":            "",
	}
	for in, want := range cases {
		if got := snakeToCamel(in, true); got != want {
			t.Errorf("snakeToCamel(%q) = %q, want %q", in, got, want)
		}
	}
}
