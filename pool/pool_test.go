package pool

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shrek82/jmapper/dialect"
)

func openSQLite(t *testing.T) (*SQLOpener, string) {
	t.Helper()
	o, err := NewSQLOpener("sqlite3", &Options{MaxOpenConns: 2})
	if err != nil {
		t.Fatalf("failed to create opener: %v", err)
	}
	t.Cleanup(func() { o.Close() })

	dsn := filepath.Join(t.TempDir(), "pool.db")
	db, err := o.DB(dsn)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE customer (customer_id INTEGER PRIMARY KEY, first_name TEXT, city TEXT);
		INSERT INTO customer VALUES (1, 'Ann', 'Oslo'), (2, 'Bob', NULL), (3, 'Cid', 'Oslo');`)
	if err != nil {
		t.Fatalf("failed to seed db: %v", err)
	}
	return o, dsn
}

func param(cmd Command, name string, v any) Param {
	p := cmd.CreateParameter()
	p.SetName(name)
	p.SetValue(v)
	return p
}

func TestNewSQLOpenerUnknownDriver(t *testing.T) {
	if _, err := NewSQLOpener("nope", nil); err == nil {
		t.Fatal("expected error for unregistered dialect")
	}
}

func TestExecuteText(t *testing.T) {
	o, dsn := openSQLite(t)
	conn, err := o.Connect(dsn)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if conn.IsOpen() {
		t.Fatal("Connect should return an unopened connection")
	}

	ctx := context.Background()
	if err := conn.Open(ctx); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer conn.Close()

	cmd := conn.CreateCommand()
	cur, err := cmd.Execute(ctx, Request{
		Text:    "SELECT customer_id, first_name, city FROM customer WHERE city = $City OR customer_id = $Id ORDER BY customer_id",
		Timeout: 5 * time.Second,
		Params:  []Param{param(cmd, "$City", "Oslo"), param(cmd, "$Id", 2)},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	defer cur.Close()

	if cur.ColumnCount() != 3 || cur.ColumnName(1) != "first_name" {
		t.Fatalf("unexpected columns: %d %q", cur.ColumnCount(), cur.ColumnName(1))
	}

	var names []string
	nulls := 0
	for cur.Next() {
		names = append(names, cur.Value(1).(string))
		if cur.IsNull(2) {
			nulls++
		}
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("cursor error: %v", err)
	}
	if len(names) != 3 || names[0] != "Ann" || names[1] != "Bob" {
		t.Errorf("unexpected rows: %v", names)
	}
	if nulls != 1 {
		t.Errorf("expected one NULL city, got %d", nulls)
	}
}

func TestExecuteOnClosedConn(t *testing.T) {
	o, dsn := openSQLite(t)
	conn, _ := o.Connect(dsn)
	_, err := conn.CreateCommand().Execute(context.Background(), Request{Text: "SELECT 1"})
	if !errors.Is(err, ErrConnClosed) {
		t.Fatalf("expected ErrConnClosed, got %v", err)
	}
}

func TestOutputParamUnsupported(t *testing.T) {
	o, dsn := openSQLite(t)
	conn, _ := o.Connect(dsn)
	ctx := context.Background()
	if err := conn.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	cmd := conn.CreateCommand()
	p := param(cmd, "@total", nil)
	p.SetDirection(DirectionOutput)
	_, err := cmd.Execute(ctx, Request{Text: "SELECT 1", Params: []Param{p}})
	if !errors.Is(err, dialect.ErrOutputUnsupported) {
		t.Fatalf("expected ErrOutputUnsupported, got %v", err)
	}
}

func TestTransaction(t *testing.T) {
	o, dsn := openSQLite(t)
	conn, _ := o.Connect(dsn)
	ctx := context.Background()
	defer conn.Close()

	count := func(tx Tx) int {
		cmd := conn.CreateCommand()
		cur, err := cmd.Execute(ctx, Request{Text: "SELECT COUNT(*) FROM customer", Tx: tx})
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		defer cur.Close()
		cur.Next()
		return int(cur.Value(0).(int64))
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if tx.Conn() != conn {
		t.Error("transaction should report its connection")
	}

	cmd := conn.CreateCommand()
	cur, err := cmd.Execute(ctx, Request{
		Text:   "INSERT INTO customer (customer_id, first_name) VALUES (@id, @name)",
		Params: []Param{param(cmd, "@id", 4), param(cmd, "@name", "Dee")},
		Tx:     tx,
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	for cur.Next() {
	}
	cur.Close()

	if n := count(tx); n != 4 {
		t.Errorf("expected 4 rows inside transaction, got %d", n)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
	if n := count(nil); n != 3 {
		t.Errorf("expected 3 rows after rollback, got %d", n)
	}
}

func TestRenderPositional(t *testing.T) {
	cmd := &sqlCommand{}
	params := []Param{param(cmd, "@a", 1), param(cmd, "@B", "x")}
	text := "SELECT * FROM t WHERE a = @a AND b = @b OR a = @a"

	t.Run("Question", func(t *testing.T) {
		d, _ := dialect.Get("mysql")
		got, args, err := render(d, Request{Text: text, Params: params})
		if err != nil {
			t.Fatal(err)
		}
		if got != "SELECT * FROM t WHERE a = ? AND b = ? OR a = ?" {
			t.Errorf("unexpected text: %s", got)
		}
		if len(args) != 3 || args[0] != 1 || args[1] != "x" || args[2] != 1 {
			t.Errorf("unexpected args: %v", args)
		}
	})

	t.Run("Dollar", func(t *testing.T) {
		d, _ := dialect.Get("postgres")
		got, args, err := render(d, Request{Text: text, Params: params})
		if err != nil {
			t.Fatal(err)
		}
		if got != "SELECT * FROM t WHERE a = $1 AND b = $2 OR a = $1" {
			t.Errorf("unexpected text: %s", got)
		}
		if len(args) != 2 {
			t.Errorf("unexpected args: %v", args)
		}
	})

	t.Run("DriverPlaceholders", func(t *testing.T) {
		d, _ := dialect.Get("mysql")
		got, args, err := render(d, Request{Text: "SELECT ? + ?", Params: params})
		if err != nil {
			t.Fatal(err)
		}
		if got != "SELECT ? + ?" || len(args) != 2 {
			t.Errorf("unexpected render: %s %v", got, args)
		}
	})

	t.Run("Procedure", func(t *testing.T) {
		d, _ := dialect.Get("mysql")
		got, args, err := render(d, Request{Kind: KindStoredProcedure, Text: "get_customer", Params: params})
		if err != nil {
			t.Fatal(err)
		}
		if got != "CALL get_customer(?, ?)" || len(args) != 2 {
			t.Errorf("unexpected render: %s %v", got, args)
		}
	})
}

func TestBindValue(t *testing.T) {
	cmd := &sqlCommand{}

	t.Run("Coerce", func(t *testing.T) {
		p := param(cmd, "n", "42")
		p.SetDbType(DbTypeInt32)
		v, err := p.(*sqlParam).bindValue()
		if err != nil || v != int32(42) {
			t.Errorf("expected int32(42), got %#v (%v)", v, err)
		}
	})

	t.Run("CoerceFailure", func(t *testing.T) {
		p := param(cmd, "n", "abc")
		p.SetDbType(DbTypeInt64)
		if _, err := p.(*sqlParam).bindValue(); err == nil {
			t.Error("expected coercion error")
		}
	})

	t.Run("CoerceStrictIntegers", func(t *testing.T) {
		p := param(cmd, "n", "010")
		p.SetDbType(DbTypeInt32)
		if v, err := p.(*sqlParam).bindValue(); err != nil || v != int32(10) {
			t.Errorf("expected int32(10), got %#v (%v)", v, err)
		}

		bad := []struct {
			name  string
			value any
			typ   DbType
		}{
			{"Fraction", 3.7, DbTypeInt32},
			{"Int16Overflow", 40000, DbTypeInt16},
			{"ByteOverflow", "300", DbTypeByte},
			{"NegativeUnsigned", -1, DbTypeUInt32},
			{"Hex", "0x10", DbTypeInt64},
			{"Uint64ToInt64", uint64(math.MaxUint64), DbTypeInt64},
		}
		for _, tc := range bad {
			t.Run(tc.name, func(t *testing.T) {
				p := param(cmd, "n", tc.value)
				p.SetDbType(tc.typ)
				if v, err := p.(*sqlParam).bindValue(); err == nil {
					t.Errorf("expected coercion error, got %#v", v)
				}
			})
		}
	})

	t.Run("Guid", func(t *testing.T) {
		id := uuid.New()
		p := param(cmd, "g", id.String())
		p.SetDbType(DbTypeGuid)
		v, err := p.(*sqlParam).bindValue()
		if err != nil || v != id {
			t.Errorf("expected %v, got %#v (%v)", id, v, err)
		}
	})

	t.Run("SizeTruncates", func(t *testing.T) {
		p := param(cmd, "s", "héllo world")
		p.SetSize(5)
		v, _ := p.(*sqlParam).bindValue()
		if v != "héllo" {
			t.Errorf("expected truncated string, got %q", v)
		}
	})

	t.Run("ScaleRounds", func(t *testing.T) {
		p := param(cmd, "d", 12.3456)
		p.SetDbType(DbTypeDecimal)
		p.SetPrecision(10)
		p.SetScale(2)
		v, _ := p.(*sqlParam).bindValue()
		if v != 12.35 {
			t.Errorf("expected 12.35, got %v", v)
		}
	})

	t.Run("NilUntouched", func(t *testing.T) {
		p := param(cmd, "n", nil)
		p.SetDbType(DbTypeInt32)
		v, err := p.(*sqlParam).bindValue()
		if err != nil || v != nil {
			t.Errorf("expected nil, got %#v (%v)", v, err)
		}
	})
}
