// Package database owns the lifecycle of the embedded SQLite store: it
// creates the schema on first run, upgrades stores written by older
// application versions in place, and seeds the product catalog.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens the SQLite store at the given path and brings its schema up to
// date. It must be called exactly once at startup, before any other store
// access; a non-nil error means the application cannot proceed.
func Open(path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Single local writer; one pooled connection keeps the pragma effective.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := Initialize(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Initialize is idempotent: running it on an already-migrated store is a
// no-op. It creates the base tables (fatal on failure), then applies the
// guarded in-place evolutions (each failure logged and skipped), then seeds
// the product catalog if it is empty.
func Initialize(db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	applyEvolutions(db, logger)

	if err := seedProducts(db, logger); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	return nil
}

// columnExists reports whether table has a column with the given name. A
// missing table reads as "column absent", never as an error.
func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scan column name: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
