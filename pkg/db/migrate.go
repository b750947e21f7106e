package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

// MigrationStatus describes the schema version recorded in schema_migrations
type MigrationStatus struct {
	Version uint
	Dirty   bool
	// Applied is false when no migration has ever run
	Applied bool
}

// Migrate applies all pending migrations. It returns the resulting status;
// an already up to date schema is not an error.
func Migrate(dbURL string) (MigrationStatus, error) {
	if dbURL == "" {
		return MigrationStatus{}, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	m, err := newMigrate(dbURL)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationStatus{}, fmt.Errorf("migration failed: %w", err)
	}

	return status(m)
}

// Rollback reverts the given number of migrations.
func Rollback(dbURL string, steps int) (MigrationStatus, error) {
	if dbURL == "" {
		return MigrationStatus{}, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if steps < 1 {
		return MigrationStatus{}, fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	m, err := newMigrate(dbURL)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-steps); err != nil {
		return MigrationStatus{}, fmt.Errorf("rollback failed: %w", err)
	}

	return status(m)
}

// Status reports the current migration version.
func Status(dbURL string) (MigrationStatus, error) {
	if dbURL == "" {
		return MigrationStatus{}, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	m, err := newMigrate(dbURL)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	return status(m)
}

func status(m *migrate.Migrate) (MigrationStatus, error) {
	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return MigrationStatus{}, nil
		}
		return MigrationStatus{}, err
	}
	return MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}
