package store

import (
	"errors"
	"fmt"

	"github.com/andrewpark3412/gift-tracking/internal/store/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// schemaTable records which kv migrations have been applied.
const schemaTable = "kv_schema_migrations"

// ErrDirtySchema reports a kv schema left half-migrated by an earlier run.
// The queue snapshot is not read until it is repaired by hand.
var ErrDirtySchema = errors.New("kv schema is dirty")

// Schema is the kv schema state after Migrate.
type Schema struct {
	Version uint
	// Upgraded is set when this call applied at least one migration.
	Upgraded bool
}

// Migrate brings the kv table up to the newest embedded migration.
func (db *DB) Migrate() (Schema, error) {
	m, err := db.migrator()
	if err != nil {
		return Schema{}, err
	}

	upgraded := true
	if err := m.Up(); err != nil {
		var dirty migrate.ErrDirty
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			upgraded = false
		case errors.As(err, &dirty):
			return Schema{}, fmt.Errorf("%w at version %d", ErrDirtySchema, dirty.Version)
		default:
			return Schema{}, fmt.Errorf("apply kv migrations: %w", err)
		}
	}

	version, dirty, err := m.Version()
	if err != nil {
		return Schema{}, fmt.Errorf("read kv schema version: %w", err)
	}
	if dirty {
		return Schema{}, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}
	return Schema{Version: version, Upgraded: upgraded}, nil
}

func (db *DB) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("load kv migrations: %w", err)
	}
	target, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{MigrationsTable: schemaTable})
	if err != nil {
		return nil, fmt.Errorf("open kv schema table: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, "sqlite3", target)
}
