package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tictoc/tictoc/pkg/config"
	"github.com/tictoc/tictoc/pkg/db"
	"github.com/tictoc/tictoc/pkg/model"
	"github.com/tictoc/tictoc/pkg/password"
	"github.com/tictoc/tictoc/pkg/server/store"
	gormstore "github.com/tictoc/tictoc/pkg/server/store/gorm"
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user with a bcrypt-hashed password.

The password policy and bcrypt cost come from the tictoc configuration.
The created user is printed as JSON.

Example:
  tictocctl user create --name Chad --email chad@gmail.com --password password`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		pw, _ := cmd.Flags().GetString("password")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		database, err := db.Connect(db.Config{URL: requireDatabaseURL()})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			os.Exit(1)
		}

		user, err := createUser(cmd.Context(), gormstore.NewUsersStore(database), cfg, name, email, pw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}

		out, _ := json.Marshal(user)
		fmt.Println(string(out))
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringP("name", "n", "", "user name")
	userCreateCmd.Flags().StringP("email", "e", "", "user email")
	userCreateCmd.Flags().StringP("password", "p", "", "user password")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
}

func createUser(ctx context.Context, users store.UsersStore, cfg *config.Config, name, email, pw string) (*model.UserView, error) {
	if name == "" || email == "" || pw == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}
	if len(pw) < cfg.MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", cfg.MinPasswordLength)
	}

	hash, err := password.Hash(pw, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return users.CreateUser(ctx, name, email, hash)
}
