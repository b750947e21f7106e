package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
)

const maintenanceDatabase = "postgres"

// SQLSTATE codes returned by CREATE DATABASE / DROP DATABASE
const (
	codeDuplicateDatabase = "42P04"
	codeInvalidCatalog    = "3D000"
)

// Create creates the database named in dbURL by connecting to the server's
// maintenance database. It reports false without error when the database
// already exists.
func Create(ctx context.Context, dbURL string) (bool, error) {
	maintenanceURL, name, err := splitDatabaseURL(dbURL)
	if err != nil {
		return false, err
	}

	conn, err := sql.Open("postgres", maintenanceURL)
	if err != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return createDatabase(ctx, conn, name)
}

// Drop drops the database named in dbURL if it exists.
func Drop(ctx context.Context, dbURL string) error {
	maintenanceURL, name, err := splitDatabaseURL(dbURL)
	if err != nil {
		return err
	}

	conn, err := sql.Open("postgres", maintenanceURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return dropDatabase(ctx, conn, name)
}

func createDatabase(ctx context.Context, conn *sql.DB, name string) (bool, error) {
	_, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == codeDuplicateDatabase {
			return false, nil
		}
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return true, nil
}

func dropDatabase(ctx context.Context, conn *sql.DB, name string) error {
	_, err := conn.ExecContext(ctx, "DROP DATABASE IF EXISTS "+pq.QuoteIdentifier(name))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == codeInvalidCatalog {
			return nil
		}
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	return nil
}

// splitDatabaseURL returns a URL pointing at the maintenance database of the
// same server, along with the database name from the original URL.
func splitDatabaseURL(dbURL string) (string, string, error) {
	if dbURL == "" {
		return "", "", fmt.Errorf("DATABASE_URL environment variable is required")
	}

	u, err := url.Parse(dbURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", "", fmt.Errorf("invalid database URL: unsupported scheme %q", u.Scheme)
	}

	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", "", fmt.Errorf("invalid database URL: missing database name")
	}
	if name == maintenanceDatabase {
		return "", "", fmt.Errorf("refusing to manage the %q maintenance database", maintenanceDatabase)
	}

	maintenance := *u
	maintenance.Path = "/" + maintenanceDatabase
	maintenance.RawPath = ""
	return maintenance.String(), name, nil
}
