package jmapper_test

import (
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shrek82/jmapper"
	"github.com/shrek82/jmapper/config"
)

func TestOpenProfile(t *testing.T) {
	cfg := &config.Config{
		CommandTimeout:      10,
		IgnoreMissingColumn: true,
		Log:                 config.Log{Level: "silent"},
		Connections: []config.Connection{
			{Name: "local", Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "profile.db"), MaxOpenConns: 1},
		},
	}

	db, err := jmapper.OpenProfile(cfg, "")
	if err != nil {
		t.Fatalf("OpenProfile failed: %v", err)
	}
	defer db.Close()

	type Row struct {
		Answer int
		Name   string
	}
	res, err := jmapper.NewQuery[Row](db).
		SetSql("SELECT 42 AS answer, @Name AS name").
		AddParameter("@Name", "jmapper").
		GetResult()
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(res.List) != 1 || res.List[0].Answer != 42 || res.List[0].Name != "jmapper" {
		t.Errorf("Unexpected result: %+v", res.List)
	}

	if _, err := jmapper.OpenProfile(cfg, "missing"); !errors.Is(err, config.ErrNoConnection) {
		t.Errorf("Expected ErrNoConnection, got %v", err)
	}
}
