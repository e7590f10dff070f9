package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shrek82/jmapper"
	"github.com/shrek82/jmapper/config"
	"github.com/shrek82/jmapper/core"
	"github.com/shrek82/jmapper/logger"
)

// listFlag collects a repeatable flag.
type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

var (
	configPath = flag.String("config", "", "configuration file (yaml, json or toml)")
	profile    = flag.String("profile", "", "connection profile from the configuration")
	driverName = flag.String("driver", "", "database driver (sqlite3, mysql, postgres, pgx, duckdb)")
	dsn        = flag.String("dsn", "", "connection string (DSN)")
	sqlText    = flag.String("sql", "", "SQL text to run")
	procName   = flag.String("proc", "", "stored procedure to call instead of -sql")
	timeout    = flag.Int("timeout", -1, "command timeout in seconds, 0 for none")
	strict     = flag.Bool("strict", false, "fail when the result has duplicate column names")
	format     = flag.String("format", "text", "output format: text or json")
	genStruct  = flag.String("gen", "", "print a Go struct named after this flag for the result columns")
	logLevel   = flag.String("log", "", "log level (silent, error, warn, info, debug)")
	params     listFlag
	outputs    listFlag
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	flag.Var(&params, "param", "input parameter name[:type]=value, repeatable")
	flag.Var(&outputs, "out", "output parameter name[:type], repeatable")
	flag.Parse()

	if *sqlText == "" && *procName == "" {
		fmt.Println("usage: jmapper (-config <file> [-profile <name>] | -driver <driver> -dsn <dsn>) (-sql <text> | -proc <name>) [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *format != "text" && *format != "json" {
		log.Fatalf("unknown format %q", *format)
	}

	db, err := openDB()
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer db.Close()

	if *logLevel != "" {
		db.Logger().SetLevel(logger.ParseLevel(*logLevel))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	q := jmapper.NewQuery[record](db).WithContext(ctx)
	if *procName != "" {
		q.SetStoredProcedure(*procName)
	} else {
		q.SetSql(*sqlText)
	}
	if *timeout >= 0 {
		q.SetCommandTimeout(*timeout)
	}

	for _, p := range params {
		qp, err := parseParam(p, core.DirectionInput)
		if err != nil {
			log.Fatalf("invalid -param %q: %v", p, err)
		}
		q.AddQueryParameter(qp)
	}
	for _, o := range outputs {
		qp, err := parseParam(o, core.DirectionOutput)
		if err != nil {
			log.Fatalf("invalid -out %q: %v", o, err)
		}
		q.AddQueryParameter(qp)
	}

	q.MapObject(func(row core.RowValues) (record, error) {
		return newRecord(row, *strict)
	})

	res, err := q.GetResult()
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}

	if *genStruct != "" {
		if err := writeStruct(os.Stdout, *genStruct, res.List); err != nil {
			log.Fatalf("failed to generate struct: %v", err)
		}
		return
	}

	if *format == "json" {
		err = writeJSON(os.Stdout, res)
	} else {
		err = writeText(os.Stdout, res)
	}
	if err != nil {
		log.Fatalf("failed to write result: %v", err)
	}
}

func openDB() (*jmapper.DB, error) {
	if *driverName != "" || *dsn != "" {
		if *driverName == "" || *dsn == "" {
			return nil, fmt.Errorf("-driver and -dsn must be used together")
		}
		return jmapper.Open(*driverName, *dsn, nil)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	return jmapper.OpenProfile(cfg, *profile)
}

// parseParam reads name[:type][=value]. Outputs take no value.
func parseParam(s string, dir core.Direction) (core.QueryParameter, error) {
	decl, value, hasValue := strings.Cut(s, "=")
	name, typ, hasType := strings.Cut(decl, ":")
	if name == "" && hasType {
		// :name prefix
		name, typ, hasType = strings.Cut(decl[1:], ":")
		name = ":" + name
	}

	var v any
	if hasValue {
		if dir == core.DirectionOutput {
			dir = core.DirectionInputOutput
		}
		v = value
	} else if dir == core.DirectionInput {
		return core.QueryParameter{}, fmt.Errorf("missing value")
	}

	p := core.NewParameter(name, v).WithDirection(dir)
	if hasType {
		dt, ok := core.ParseDataType(typ)
		if !ok {
			return core.QueryParameter{}, fmt.Errorf("unknown type %q", typ)
		}
		p = p.WithDataType(dt)
	}
	return p, p.Validate()
}
