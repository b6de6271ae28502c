package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/titles"
)

var spacingCmd = &cobra.Command{
	Use:   "spacing <text>...",
	Short: "Show spaced and unspaced renderings of a title",
	Long: `Inserts spaces at Hangul/Latin and digit/Hangul boundaries, collapses whitespace and prints
the spaced form together with the form with all whitespace removed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpacing,
}

func init() {
	rootCmd.AddCommand(spacingCmd)
}

func runSpacing(cmd *cobra.Command, args []string) error {
	variants := titles.GenerateSpacingVariants(strings.Join(args, " "))
	return writeOutput(cmd, "", variants, "spacing variants")
}
