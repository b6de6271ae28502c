// Package main provides the listing_agent CLI for keyword scoring, title generation and
// category recommendation, and the entry point for the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootVerbose    bool
	rootLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "listing_agent",
	Short: "Marketplace listing optimizer",
	Long: `listing_agent scores seller keywords, recommends a diverse keyword set, generates and
evaluates product listing titles, and suggests marketplace categories with their required attributes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (environment variables override file values)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print boxed summaries in addition to JSON output")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
