package dialect

import (
	"errors"
	"strings"
	"testing"
)

func lookupOf(names ...string) func(string) (int, bool) {
	return func(name string) (int, bool) {
		for i, n := range names {
			if strings.EqualFold(n, name) {
				return i, true
			}
		}
		return 0, false
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"sqlite3", "mysql", "postgres", "pgx", "sqlserver", "duckdb"} {
		d, ok := Get(name)
		if !ok {
			t.Fatalf("dialect %s not registered", name)
		}
		if d.Name() != name {
			t.Errorf("Expected name %s, got %s", name, d.Name())
		}
	}
	if _, ok := Get("oracle"); ok {
		t.Error("oracle should not be registered")
	}
}

func TestRebind(t *testing.T) {
	pg, _ := Get("postgres")
	my, _ := Get("mysql")

	t.Run("Dollar", func(t *testing.T) {
		sql, order := Rebind("SELECT * FROM t WHERE a = @A AND b = :b OR a2 = @a", pg, lookupOf("a", "b"))
		if sql != "SELECT * FROM t WHERE a = $1 AND b = $2 OR a2 = $1" {
			t.Errorf("Unexpected SQL: %s", sql)
		}
		if len(order) != 2 || order[0] != 0 || order[1] != 1 {
			t.Errorf("Unexpected order: %v", order)
		}
	})

	t.Run("Question", func(t *testing.T) {
		sql, order := Rebind("SELECT * FROM t WHERE a = @a AND b = $b OR a2 = @a", my, lookupOf("a", "b"))
		if sql != "SELECT * FROM t WHERE a = ? AND b = ? OR a2 = ?" {
			t.Errorf("Unexpected SQL: %s", sql)
		}
		if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 0 {
			t.Errorf("Unexpected order: %v", order)
		}
	})

	t.Run("SkipsQuotesCommentsAndCasts", func(t *testing.T) {
		in := "SELECT '@a', \"@a\", x::int, @@rowcount, $1 -- @a\n/* :a */ FROM t WHERE mail = 'x@a' AND a = :a"
		sql, order := Rebind(in, pg, lookupOf("a"))
		want := "SELECT '@a', \"@a\", x::int, @@rowcount, $1 -- @a\n/* :a */ FROM t WHERE mail = 'x@a' AND a = $1"
		if sql != want {
			t.Errorf("Expected:\n%s\nGot:\n%s", want, sql)
		}
		if len(order) != 1 {
			t.Errorf("Unexpected order: %v", order)
		}
	})

	t.Run("DollarQuotedBody", func(t *testing.T) {
		in := "DO $body$ BEGIN PERFORM :a; END $body$; SELECT :a"
		sql, _ := Rebind(in, pg, lookupOf("a"))
		if sql != "DO $body$ BEGIN PERFORM :a; END $body$; SELECT $1" {
			t.Errorf("Unexpected SQL: %s", sql)
		}
	})

	t.Run("UnknownTokensKept", func(t *testing.T) {
		sql, order := Rebind("SELECT @unknown, @a", my, lookupOf("a"))
		if sql != "SELECT @unknown, ?" || len(order) != 1 {
			t.Errorf("Unexpected result: %s %v", sql, order)
		}
	})
}

func TestProcedureSQL(t *testing.T) {
	args := []ProcArg{{Name: "rv", Return: true}, {Name: "id"}, {Name: "total", Output: true}}

	cases := map[string]string{
		"mysql":     "CALL get_total(?, ?)",
		"postgres":  "SELECT * FROM get_total($1, $2)",
		"duckdb":    "SELECT * FROM get_total(?, ?)",
		"sqlserver": "EXEC @rv = get_total @id = @id, @total = @total OUTPUT",
	}
	for name, want := range cases {
		d, _ := Get(name)
		got, err := d.ProcedureSQL("get_total", args)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: expected %q, got %q", name, want, got)
		}
	}

	d, _ := Get("sqlite3")
	if _, err := d.ProcedureSQL("p", nil); !errors.Is(err, ErrProcedureUnsupported) {
		t.Errorf("Expected ErrProcedureUnsupported, got %v", err)
	}
}

func TestTrimPrefix(t *testing.T) {
	for in, want := range map[string]string{"@id": "id", ":id": "id", "$id": "id", "id": "id"} {
		if got := TrimPrefix(in); got != want {
			t.Errorf("TrimPrefix(%q) = %q", in, got)
		}
	}
}
