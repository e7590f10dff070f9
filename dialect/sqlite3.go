package dialect

import (
	"fmt"
)

// SQLite dialect implementation
type sqlite3 struct{}

func init() {
	Register("sqlite3", &sqlite3{})
}

func (d *sqlite3) Name() string {
	return "sqlite3"
}

func (d *sqlite3) Quote(name string) string {
	return fmt.Sprintf("`%s`", name)
}

func (d *sqlite3) Placeholder(index int) string {
	return "?"
}

// go-sqlite3 resolves :name, @name and $name itself.
func (d *sqlite3) NamedArgs() bool {
	return true
}

func (d *sqlite3) OutputArgs() bool {
	return false
}

func (d *sqlite3) ProcedureSQL(name string, args []ProcArg) (string, error) {
	return "", fmt.Errorf("%w: sqlite3 cannot call %s", ErrProcedureUnsupported, name)
}
