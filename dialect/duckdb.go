package dialect

import (
	"fmt"
)

// DuckDB dialect implementation. Procedures map to table macros.
type duckdb struct{}

func init() {
	Register("duckdb", &duckdb{})
}

func (d *duckdb) Name() string {
	return "duckdb"
}

func (d *duckdb) Quote(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}

func (d *duckdb) Placeholder(index int) string {
	return "?"
}

func (d *duckdb) NamedArgs() bool {
	return false
}

func (d *duckdb) OutputArgs() bool {
	return false
}

func (d *duckdb) ProcedureSQL(name string, args []ProcArg) (string, error) {
	return positionalProcedure(d, "SELECT * FROM", name, args)
}
