package main

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"
	"unicode"
)

const structTemplate = `// {{.StructName}} maps the columns of:
//   {{.Source}}
type {{.StructName}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}{{if .Tag}} ` + "`" + `jmapper:"column:{{.Tag}}"` + "`" + `{{end}}
{{- end}}
}
`

// Field is one generated struct field.
type Field struct {
	Name   string // Go field name
	Column string // result column
	Type   string // Go type
	Tag    string // set when Name does not match Column ignoring case
}

// StructData is the input of structTemplate.
type StructData struct {
	StructName string
	Source     string
	Fields     []Field
}

// writeStruct prints a struct the result rows can be mapped into. Types come
// from the first non-null value of each column.
func writeStruct(w io.Writer, name string, rows []record) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to infer column types from")
	}

	data := StructData{StructName: name, Source: sourceText()}
	used := make(map[string]bool)
	for i, col := range rows[0].Columns {
		f := Field{Name: snakeToCamel(col, true), Column: col, Type: "any"}
		if f.Name == "" {
			f.Name = fmt.Sprintf("Column%d", i+1)
		}
		for used[f.Name] {
			f.Name += "_"
		}
		used[f.Name] = true

		for _, r := range rows {
			if i < len(r.Values) && r.Values[i] != nil {
				f.Type = goType(r.Values[i])
				break
			}
		}
		if !strings.EqualFold(f.Name, col) {
			f.Tag = col
		}
		data.Fields = append(data.Fields, f)
	}

	tmpl, err := template.New("struct").Parse(structTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, data)
}

func sourceText() string {
	if *procName != "" {
		return "stored procedure " + *procName
	}
	return strings.Join(strings.Fields(*sqlText), " ")
}

func goType(v any) string {
	switch x := v.(type) {
	case int64:
		return "int64"
	case int32:
		return "int32"
	case float64:
		return "float64"
	case float32:
		return "float32"
	case bool:
		return "bool"
	case string:
		// display() renders times as RFC 3339
		if _, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return "time.Time"
		}
		return "string"
	}
	return fmt.Sprintf("%T", v)
}

func snakeToCamel(s string, upperFirst bool) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-' || r == '.'
	})
	for i := range parts {
		if i == 0 && !upperFirst {
			continue
		}
		// id is an initialism
		if strings.EqualFold(parts[i], "id") {
			parts[i] = "ID"
		} else if len(parts[i]) > 0 {
			runes := []rune(parts[i])
			runes[0] = unicode.ToUpper(runes[0])
			parts[i] = string(runes)
		}
	}
	out := strings.Join(parts, "")
	if out != "" && !unicode.IsLetter([]rune(out)[0]) {
		out = "C" + out
	}
	return out
}
