// Package migrations embeds the schema of the companion's key-value table
// and applies it with goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS contains the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS

// Dialect is the goose dialect of the SQLite medium.
const Dialect = "sqlite3"

// Prepare points goose at the embedded migrations. Pass a nil logger to
// keep goose's default output.
func Prepare(logger goose.Logger) error {
	goose.SetBaseFS(FS)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect(Dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}

// Run brings the key-value table of db up to date.
func Run(db *sql.DB) error {
	if err := Prepare(goose.NopLogger()); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migrate kv table: %w", err)
	}
	return nil
}
