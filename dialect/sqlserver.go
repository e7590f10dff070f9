package dialect

import (
	"fmt"
	"strings"
)

// SQL Server dialect implementation (go-mssqldb registers "sqlserver").
type sqlserver struct{}

func init() {
	Register("sqlserver", &sqlserver{})
}

func (d *sqlserver) Name() string {
	return "sqlserver"
}

func (d *sqlserver) Quote(name string) string {
	return fmt.Sprintf("[%s]", name)
}

func (d *sqlserver) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index)
}

func (d *sqlserver) NamedArgs() bool {
	return true
}

func (d *sqlserver) OutputArgs() bool {
	return true
}

// ProcedureSQL renders EXEC [@rv =] name @a = @a, @b = @b OUTPUT.
func (d *sqlserver) ProcedureSQL(name string, args []ProcArg) (string, error) {
	var sb strings.Builder
	sb.WriteString("EXEC ")
	for _, a := range args {
		if a.Return {
			sb.WriteString("@" + a.Name + " = ")
			break
		}
	}
	sb.WriteString(name)
	n := 0
	for _, a := range args {
		if a.Return {
			continue
		}
		if n == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		n++
		sb.WriteString("@" + a.Name + " = @" + a.Name)
		if a.Output {
			sb.WriteString(" OUTPUT")
		}
	}
	return sb.String(), nil
}
