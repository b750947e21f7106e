package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tictoc/tictoc/pkg/db"
	gormstore "github.com/tictoc/tictoc/pkg/server/store/gorm"
)

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Long: `List users ordered by id.

Example:
  tictocctl user list
  tictocctl user list --limit 10 --offset 20`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		database, err := db.Connect(db.Config{URL: requireDatabaseURL()})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		users := gormstore.NewUsersStore(database)

		total, err := users.CountUsers(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to count users: %v\n", err)
			os.Exit(1)
		}
		list, err := users.ListUsers(cmd.Context(), limit, offset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list users: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL")
		for _, u := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Name, u.Email)
		}
		_ = w.Flush()
		fmt.Fprintf(os.Stderr, "%d of %d users\n", len(list), total)
	},
}

func init() {
	userCmd.AddCommand(userListCmd)
	userListCmd.Flags().Int("limit", 0, "maximum number of users to list (0 for all)")
	userListCmd.Flags().Int("offset", 0, "number of users to skip")
}
