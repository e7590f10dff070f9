package dialect

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrProcedureUnsupported is returned when a database family has no stored procedures.
	ErrProcedureUnsupported = errors.New("dialect: stored procedures are not supported")
	// ErrOutputUnsupported is returned when a driver cannot bind output parameters.
	ErrOutputUnsupported = errors.New("dialect: output parameters are not supported")
)

// ProcArg describes one argument of a stored procedure call.
type ProcArg struct {
	Name   string // parameter name without its prefix
	Output bool   // Output or InputOutput
	Return bool   // receives the procedure's return status
}

// Dialect represents the database-specific parts of running a command:
// placeholder style, argument binding and stored procedure invocation.
// Each database family must implement this interface to be supported.
type Dialect interface {
	// Name returns the driver name the dialect is registered under
	Name() string
	// Quote wraps an identifier in database-specific quotes
	Quote(name string) string
	// Placeholder returns the positional placeholder for the 1-based index
	Placeholder(index int) string
	// NamedArgs reports whether the driver binds sql.Named arguments itself
	NamedArgs() bool
	// OutputArgs reports whether the driver accepts sql.Out arguments
	OutputArgs() bool
	// ProcedureSQL generates the statement that calls a stored procedure
	ProcedureSQL(name string, args []ProcArg) (string, error)
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// Register registers a new dialect for a given driver name
func Register(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[name] = d
}

// Get retrieves a registered dialect by driver name
func Get(name string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[name]
	return d, ok
}

// TrimPrefix strips the parameter marker (@, : or $) from a parameter name.
func TrimPrefix(name string) string {
	return strings.TrimLeft(name, "@:$")
}

// positionalProcedure renders "<verb> name(<p1>, <p2>, ...)" for dialects that
// call procedures with positional arguments.
func positionalProcedure(d Dialect, verb, name string, args []ProcArg) (string, error) {
	var sb strings.Builder
	sb.WriteString(verb)
	sb.WriteString(" ")
	sb.WriteString(name)
	sb.WriteString("(")
	n := 0
	for _, a := range args {
		if a.Return {
			continue
		}
		if n > 0 {
			sb.WriteString(", ")
		}
		n++
		sb.WriteString(d.Placeholder(n))
	}
	sb.WriteString(")")
	return sb.String(), nil
}
