package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tictoc/tictoc/pkg/db"
	gormstore "github.com/tictoc/tictoc/pkg/server/store/gorm"
)

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all users and restart id numbering",
	Long: `Delete all users and restart id numbering.

The schema is kept. This is meant for test databases.

Example:
  tictocctl db reset --yes`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Fprintln(os.Stderr, "Refusing to delete all users without --yes")
			os.Exit(1)
		}

		database, err := db.Connect(db.Config{URL: requireDatabaseURL()})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			os.Exit(1)
		}

		if err := gormstore.NewUsersStore(database).DeleteAll(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to reset database: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All users deleted")
	},
}

func init() {
	dbCmd.AddCommand(dbResetCmd)
	dbResetCmd.Flags().Bool("yes", false, "confirm deleting every user")
}
