package core_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shrek82/jmapper/core"
	"github.com/shrek82/jmapper/logger"
	"github.com/shrek82/jmapper/pool"
)

type Invoice struct {
	InvoiceId int64
	Total     float64
	IssuedAt  time.Time
	Paid      core.TimeScanner
	Customer  Customer
	Label     string `jmapper:"-"`
	loaded    bool
}

func (i *Invoice) AfterFind() error {
	i.loaded = true
	if i.Total < 0 {
		return errors.New("negative invoice total")
	}
	return nil
}

func setupSQLite(t *testing.T) *core.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "jmapper.db")
	db, err := core.Open("sqlite3", dsn, &core.Options{MaxOpenConns: 2})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sqlDB, err := db.Opener().(*pool.SQLOpener).DB(dsn)
	if err != nil {
		t.Fatalf("Failed to get pool: %v", err)
	}
	_, err = sqlDB.Exec(`
		CREATE TABLE customer (customer_id INTEGER PRIMARY KEY, first_name TEXT, last_name TEXT, city TEXT);
		CREATE TABLE invoice (invoice_id INTEGER PRIMARY KEY, customer_id INTEGER, total REAL, issued_at DATETIME, paid_at TEXT);
		INSERT INTO customer VALUES (1, 'Tim', 'Goyer', 'Cupertino'), (2, 'Ann', NULL, 'Oslo');
		INSERT INTO invoice VALUES
			(10, 1, 12.5, '2024-03-01 10:30:00', '2024-03-05 09:00:00'),
			(11, 1, 99.0, '2024-04-01 08:00:00', NULL),
			(12, 2, 7.25, '2024-04-02 12:00:00', '0000-00-00 00:00:00');`)
	if err != nil {
		t.Fatalf("Failed to seed sqlite: %v", err)
	}
	return db
}

const invoiceSQL = `SELECT i.invoice_id AS InvoiceId, i.total AS Total, i.issued_at AS IssuedAt,
	i.paid_at AS paid, c.customer_id AS CustomerId, c.first_name AS FirstName, c.last_name AS LastName
	FROM invoice i JOIN customer c ON c.customer_id = i.customer_id`

func TestSQLiteIntegration(t *testing.T) {
	t.Run("DefaultMapping", func(t *testing.T) {
		db := setupSQLite(t)

		res, err := core.NewQuery[Customer](db).
			SetSql("SELECT customer_id AS CustomerId, first_name AS FirstName, last_name AS LastName, city FROM customer ORDER BY customer_id").
			GetResult()
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(res.List) != 2 {
			t.Fatalf("Expected 2 customers, got %d", len(res.List))
		}
		if res.List[0].FirstName != "Tim" || res.List[0].City != "Cupertino" {
			t.Errorf("Unexpected first customer: %+v", res.List[0])
		}
		if res.List[1].LastName != "" {
			t.Errorf("Expected empty last name for null, got %q", res.List[1].LastName)
		}
	})

	t.Run("NestedObjectAndParameters", func(t *testing.T) {
		db := setupSQLite(t)

		res, err := core.NewQuery[Invoice](db).
			SetSql(invoiceSQL+" WHERE c.customer_id = $CustomerId AND i.total > @MinTotal ORDER BY i.invoice_id").
			AddParameter("$CustomerId", 1).
			AddParameter("@MinTotal", 10).
			MapProperty(func(i *Invoice) any { return &i.Paid }, "paid").
			MapPropertyFunc(func(i *Invoice) any { return &i.Customer }, func(row core.RowValues) (any, error) {
				id, err := row.GetInteger("CustomerId")
				if err != nil {
					return nil, err
				}
				return Customer{
					CustomerId: int(id.Int32),
					FirstName:  row.String("FirstName"),
					LastName:   row.String("LastName"),
				}, nil
			}).
			GetResult()
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(res.List) != 2 {
			t.Fatalf("Expected 2 invoices, got %d", len(res.List))
		}

		first := res.List[0]
		if first.InvoiceId != 10 || first.Total != 12.5 {
			t.Errorf("Unexpected invoice: %+v", first)
		}
		if first.Customer.FirstName != "Tim" || first.Customer.CustomerId != 1 {
			t.Errorf("Nested customer not mapped: %+v", first.Customer)
		}
		if first.IssuedAt.Year() != 2024 || first.IssuedAt.Month() != time.March {
			t.Errorf("Unexpected IssuedAt: %v", first.IssuedAt)
		}
		if !first.Paid.Valid || first.Paid.Value.Day() != 5 {
			t.Errorf("Unexpected Paid: %+v", first.Paid)
		}
		if res.List[1].Paid.Valid {
			t.Errorf("Expected invalid Paid for null, got %+v", res.List[1].Paid)
		}
		if !first.loaded {
			t.Error("Expected AfterFind to run")
		}

		if len(res.Parameters) != 2 {
			t.Fatalf("Expected 2 parameters, got %d", len(res.Parameters))
		}
		if v, ok := res.Parameter("CustomerId"); !ok || v.EffectiveDirection() != core.DirectionInput {
			t.Errorf("Unexpected parameter snapshot: %+v %v", v, ok)
		}
	})

	t.Run("MapObject", func(t *testing.T) {
		db := setupSQLite(t)

		res, err := core.NewQuery[map[string]any](db).
			SetSql("SELECT first_name, city FROM customer ORDER BY customer_id").
			MapObject(func(row core.RowValues) (map[string]any, error) {
				m := make(map[string]any, len(row))
				for _, cv := range row {
					m[cv.Column] = row.String(cv.Column)
				}
				return m, nil
			}).
			GetResult()
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(res.List) != 2 || res.List[1]["city"] != "Oslo" {
			t.Errorf("Unexpected rows: %v", res.List)
		}
	})

	t.Run("EmptyResult", func(t *testing.T) {
		db := setupSQLite(t)

		res, err := core.NewQuery[Customer](db).
			SetSql("SELECT * FROM customer WHERE city = :City").
			AddParameter(":City", "Nowhere").
			GetResult()
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if res.List == nil || len(res.List) != 0 {
			t.Errorf("Expected empty non-nil list, got %#v", res.List)
		}
	})

	t.Run("HookError", func(t *testing.T) {
		db := setupSQLite(t)

		_, err := core.NewQuery[Invoice](db).
			SetSql("SELECT -1 AS Total").
			GetResult()
		if err == nil || !strings.Contains(err.Error(), "negative invoice total") {
			t.Errorf("Expected hook error, got %v", err)
		}
	})

	t.Run("StoredProcedureUnsupported", func(t *testing.T) {
		db := setupSQLite(t)

		_, err := core.NewQuery[Customer](db).SetStoredProcedure("get_customers").GetResult()
		if err == nil {
			t.Error("Expected error for stored procedure on sqlite")
		}
	})

	t.Run("Transaction", func(t *testing.T) {
		db := setupSQLite(t)
		ctx := context.Background()

		err := db.Transaction(ctx, func(tx *core.Tx) error {
			_, err := core.NewQuery[Customer](db).
				SetSql("INSERT INTO customer (customer_id, first_name) VALUES (@Id, @Name)").
				AddParameter("@Id", 3).
				AddParameter("@Name", "Cid").
				GetResultTx(tx)
			if err != nil {
				return err
			}
			res, err := core.NewQuery[Customer](db).
				SetSql("SELECT customer_id AS CustomerId FROM customer").
				GetResultTx(tx)
			if err != nil {
				return err
			}
			if len(res.List) != 3 {
				t.Errorf("Expected 3 customers inside transaction, got %d", len(res.List))
			}
			return errors.New("rollback")
		})
		if err == nil || err.Error() != "rollback" {
			t.Fatalf("Expected rollback error, got %v", err)
		}

		res, err := core.NewQuery[Customer](db).SetSql("SELECT customer_id AS CustomerId FROM customer").GetResult()
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(res.List) != 2 {
			t.Errorf("Expected rollback to leave 2 customers, got %d", len(res.List))
		}
	})
}

func TestSQLiteLogging(t *testing.T) {
	db := setupSQLite(t)

	buf := &bytes.Buffer{}
	l := logger.NewStdLogger()
	l.SetOutput(buf)
	l.SetLevel(logger.LevelDebug)
	db.SetLogger(l)

	_, err := core.NewQuery[Customer](db).
		SetSql("SELECT * FROM customer WHERE customer_id = @Id").
		AddParameter("@Id", 1).
		GetResult()
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "customer_id = @Id") || !strings.Contains(out, "@Id=1") {
		t.Errorf("Expected statement and args in log, got: %s", out)
	}

	buf.Reset()
	l.SetLevel(logger.LevelError)
	_, err = core.NewQuery[Customer](db).SetSql("SELECT * FROM non_existent_table").GetResult()
	if err == nil {
		t.Fatal("Expected error from invalid SQL, got nil")
	}
	output := buf.String()
	if !strings.Contains(output, "[JMAPPER-ERROR]") {
		t.Errorf("Expected [JMAPPER-ERROR] in logs, got: %s", output)
	}
	if !strings.Contains(output, "no such table: non_existent_table") {
		t.Errorf("Expected driver error in logs, got: %s", output)
	}
}
