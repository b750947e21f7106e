//go:build file_migrations

package db

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationsPath is read relative to the working directory in file_migrations builds.
var MigrationsPath = "db/migrations"

func newMigrate(dbURL string) (*migrate.Migrate, error) {
	log.Printf("Running migrations from file://%s", MigrationsPath)
	return migrate.New("file://"+MigrationsPath, dbURL)
}

// MigrationFiles lists the up migrations found in MigrationsPath.
func MigrationFiles() ([]string, error) {
	entries, err := os.ReadDir(MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
