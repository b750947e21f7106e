//go:build !file_migrations

package db

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	migrations "github.com/tictoc/tictoc/db"
)

func newMigrate(dbURL string) (*migrate.Migrate, error) {
	d, err := iofs.New(migrations.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}

	return migrate.NewWithSourceInstance("iofs", d, dbURL)
}

// MigrationFiles lists the up migrations compiled into the binary.
func MigrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrations.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
