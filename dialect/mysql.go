package dialect

import (
	"fmt"
)

// MySQL dialect implementation
type mysql struct{}

func init() {
	Register("mysql", &mysql{})
}

func (d *mysql) Name() string {
	return "mysql"
}

func (d *mysql) Quote(name string) string {
	return fmt.Sprintf("`%s`", name)
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}

func (d *mysql) NamedArgs() bool {
	return false
}

func (d *mysql) OutputArgs() bool {
	return false
}

func (d *mysql) ProcedureSQL(name string, args []ProcArg) (string, error) {
	return positionalProcedure(d, "CALL", name, args)
}
