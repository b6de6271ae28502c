package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/titles"
)

var evaluateTitleCmd = &cobra.Command{
	Use:   "evaluate-title <title>",
	Short: "Score an existing listing title",
	Long: `Scores a title on keyword placement, readability, length and uniqueness and prints the
breakdown with issues and suggestions. The length limit comes from the title config.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluateTitle,
}

var evaluateTitleKeywords []string

func init() {
	evaluateTitleCmd.Flags().StringSliceVarP(&evaluateTitleKeywords, "keyword", "k", nil, "Keyword whose placement is judged (repeatable; default: first title words)")
	rootCmd.AddCommand(evaluateTitleCmd)
}

func runEvaluateTitle(cmd *cobra.Command, args []string) error {
	text := args[0]
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("title must not be empty")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	quality := titles.EvaluateTitle(text, a.cfg.Titles.MaxLength, evaluateTitleKeywords)
	if a.printer != nil {
		a.printer.PrintTitleQuality(text, quality)
	}
	return writeOutput(cmd, "", quality, "title quality")
}
