package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"soulball/migrations"
)

const usage = `Usage: migrate [-db path] <command>

Manages the schema of the companion's SQLite key-value store. Not needed
when REDIS_ADDR is set; the companion also migrates on startup.

Commands:
  up          Create or upgrade the kv table
  up-one      Apply the next migration only
  down        Roll back the last migration
  status      List applied and pending migrations
  version     Print the schema version
  reset       Drop the kv table (every stored collection is lost)
`

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/companion.db"), "companion SQLite store (DATABASE_PATH)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open store %s: %v", *dbPath, err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Prepare(nil); err != nil {
		log.Fatalf("prepare migrations: %v", err)
	}

	cmd := args[0]
	switch cmd {
	case "up":
		err = goose.Up(db, ".")
	case "up-one":
		err = goose.UpByOne(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	case "version":
		err = goose.Version(db, ".")
	case "reset":
		err = goose.Reset(db, ".")
	default:
		flag.Usage()
		log.Fatalf("unknown command: %s", cmd)
	}

	if err != nil {
		log.Fatalf("%s %s: %v", cmd, *dbPath, err)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
