package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateTitlesCmd = &cobra.Command{
	Use:   "generate-titles",
	Short: "Generate ranked listing titles",
	Long: `Builds title candidates from the given keyword terms and product components, removes
stopwords and repeated tokens, normalizes spacing and returns up to 10 titles ranked by quality.
Every --keyword must exist in the keyword catalog (--in, or the configured store).`,
	RunE: runGenerateTitles,
}

var (
	generateTitlesInput      string
	generateTitlesOutput     string
	generateTitlesComponents componentFlags
)

func init() {
	generateTitlesCmd.Flags().StringVarP(&generateTitlesInput, "in", "i", "", "Path to keyword catalog CSV or JSON file")
	generateTitlesCmd.Flags().StringVarP(&generateTitlesOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	generateTitlesComponents.register(generateTitlesCmd)

	if err := generateTitlesCmd.MarkFlagRequired("keyword"); err != nil {
		panic(fmt.Sprintf("failed to mark keyword flag as required: %v", err))
	}

	rootCmd.AddCommand(generateTitlesCmd)
}

func runGenerateTitles(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	catalog, err := a.loadKeywords(cmd.Context(), generateTitlesInput)
	if err != nil {
		return err
	}
	engines, err := a.engines()
	if err != nil {
		return err
	}

	// Scores given in the file are kept; unscored rows are scored against the file.
	if generateTitlesInput != "" {
		catalog = engines.Scorer.ScoreMissing(catalog)
	}

	generated, err := engines.Generator.GenerateTitles(generateTitlesComponents.components(), catalog)
	if err != nil {
		return fmt.Errorf("failed to generate titles: %w", err)
	}
	a.logger.Info("generated titles", "count", len(generated))

	if a.printer != nil {
		a.printer.PrintTitles(generated)
	}
	return writeOutput(cmd, generateTitlesOutput, generated, fmt.Sprintf("%d titles", len(generated)))
}
