package dialect

import (
	"fmt"
)

// PostgreSQL dialect implementation, shared by lib/pq and pgx.
type postgres struct {
	name string
}

func init() {
	Register("postgres", &postgres{name: "postgres"})
	Register("pgx", &postgres{name: "pgx"})
}

func (d *postgres) Name() string {
	return d.name
}

func (d *postgres) Quote(name string) string {
	// PostgreSQL uses double quotes for identifiers
	return fmt.Sprintf(`"%s"`, name)
}

func (d *postgres) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *postgres) NamedArgs() bool {
	return false
}

// OUT parameters of a PostgreSQL function come back as result columns.
func (d *postgres) OutputArgs() bool {
	return false
}

func (d *postgres) ProcedureSQL(name string, args []ProcArg) (string, error) {
	return positionalProcedure(d, "SELECT * FROM", name, args)
}
