package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tictoc/tictoc/pkg/config"
	"github.com/tictoc/tictoc/pkg/token"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect login tokens",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'token' requires a subcommand (decode)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var tokenDecodeCmd = &cobra.Command{
	Use:   "decode <token>",
	Short: "Verify a login token and print its claims",
	Long: `Verify a login token with the configured secret and print its claims.

Example:
  tictocctl token decode eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		out, err := decodeToken(token.NewIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL()), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to decode token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenDecodeCmd)
}

type decodedToken struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IssuedAt  string `json:"issued_at,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func decodeToken(issuer *token.Issuer, signed string) (string, error) {
	claims, err := issuer.Parse(signed)
	if err != nil {
		return "", err
	}

	out := decodedToken{ID: claims.ID, Name: claims.Name, Email: claims.Email}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.UTC().Format(time.RFC3339)
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
