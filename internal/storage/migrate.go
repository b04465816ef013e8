package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp applies every up migration in lexical order. Migrations are idempotent.
func MigrateUp(db *sql.DB) error {
	return applyMigrations(db, ".up.sql")
}

// MigrateDown drops the schema.
func MigrateDown(db *sql.DB) error {
	return applyMigrations(db, ".down.sql")
}

func applyMigrations(db *sql.DB, suffix string) error {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	for _, name := range entries {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if _, execErr := db.Exec(string(sqlBytes)); execErr != nil {
			return fmt.Errorf("%s %s: %w", config.ErrMigrate, name, execErr)
		}
	}
	return nil
}
