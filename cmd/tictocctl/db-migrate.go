package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tictoc/tictoc/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations to bring the schema
up to date. Migrations are embedded in the binary; build with the
file_migrations tag to read them from db/migrations instead.

Example:
  tictocctl db migrate`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dbURL := requireDatabaseURL()

		before, err := db.Status(dbURL)
		if err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Current version: %d (dirty: %v)\n", before.Version, before.Dirty)

		after, err := db.Migrate(dbURL)
		if err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}

		if after.Version == before.Version && before.Applied {
			fmt.Println("No migrations to run - database is up to date")
			return
		}
		fmt.Printf("Migrated to version: %d\n", after.Version)
		fmt.Println("Migrations complete")
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  tictocctl db down      # Rollback 1 migration
  tictocctl db down 2    # Rollback 2 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps, err := parseSteps(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		fmt.Printf("Rolling back %d migration(s)...\n", steps)
		status, err := db.Rollback(requireDatabaseURL(), steps)
		if err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Rolled back to version: %d\n", status.Version)
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		status, err := db.Status(requireDatabaseURL())
		if err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
		fmt.Print(formatStatus(status))
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return steps, nil
}

func formatStatus(status db.MigrationStatus) string {
	if !status.Applied {
		return "No migrations have been applied yet\n"
	}
	out := fmt.Sprintf("Current version: %d\n", status.Version)
	if status.Dirty {
		out += "Warning: Database is in a dirty state\n"
	}
	return out
}
