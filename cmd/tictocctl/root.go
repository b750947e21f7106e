package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tictocctl",
	Short: "Run and manage the tictoc user service",
	Long: `tictocctl runs the tictoc HTTP server and manages its database,
users, tokens and configuration.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
