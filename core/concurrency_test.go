package core_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shrek82/jmapper/core"
	"github.com/shrek82/jmapper/internal/mockdb"
)

func TestConcurrentQueries(t *testing.T) {
	const goroutines = 20
	const iterations = 50

	db, drv := newDB(t, customerTable())

	var wg sync.WaitGroup
	errs := make(chan error, goroutines*iterations)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				res, err := core.NewQuery[Customer](db).
					SetSql("select * from Customer").
					AddParameter("@Worker", id).
					MapProperty(func(c *Customer) any { return &c.Zip }, "PostalCode").
					GetResult()
				if err != nil {
					errs <- fmt.Errorf("goroutine %d iteration %d failed: %v", id, j, err)
					return
				}
				if len(res.List) != 2 || res.List[0].Zip != "95014" {
					errs <- fmt.Errorf("goroutine %d iteration %d got invalid rows", id, j)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if drv.OpenConns() != 0 {
		t.Errorf("expected all connections closed, %d open", drv.OpenConns())
	}
}

func BenchmarkMaterialize(b *testing.B) {
	table := mockdb.NewTable("CustomerId", "FirstName", "LastName", "PostalCode")
	for i := 0; i < 1000; i++ {
		table.AddRow(int64(i), "Tim", "Goyer", "95014")
	}
	db := core.NewDB(mockdb.New(table), "mock://bench")
	db.SetLogger(nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := core.NewQuery[Customer](db).
			SetSql("select * from Customer").
			MapProperty(func(c *Customer) any { return &c.Zip }, "PostalCode").
			GetResult()
		if err != nil {
			b.Fatal(err)
		}
	}
}
