package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var scoreKeywordsCmd = &cobra.Command{
	Use:   "score-keywords",
	Short: "Score a keyword batch",
	Long: `Scores every keyword in a CSV or JSON file against the batch's own volume range and writes
the scored keywords as JSON. Without --in the configured store's catalog is scored.`,
	RunE: runScoreKeywords,
}

var (
	scoreKeywordsInput  string
	scoreKeywordsOutput string
	scoreKeywordsSort   bool
)

func init() {
	scoreKeywordsCmd.Flags().StringVarP(&scoreKeywordsInput, "in", "i", "", "Path to keyword CSV or JSON file")
	scoreKeywordsCmd.Flags().StringVarP(&scoreKeywordsOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	scoreKeywordsCmd.Flags().BoolVar(&scoreKeywordsSort, "sort", false, "Sort the output by descending score")
	rootCmd.AddCommand(scoreKeywordsCmd)
}

func runScoreKeywords(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	keywords, err := a.loadKeywords(cmd.Context(), scoreKeywordsInput)
	if err != nil {
		return err
	}
	engines, err := a.engines()
	if err != nil {
		return err
	}

	scored := engines.Scorer.CalculateScores(keywords)
	if scoreKeywordsSort {
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].ScoreValue() > scored[j].ScoreValue()
		})
	}
	a.logger.Info("scored keywords", "count", len(scored))

	if a.printer != nil {
		a.printer.PrintKeywordScores(scored)
	}
	return writeOutput(cmd, scoreKeywordsOutput, scored, fmt.Sprintf("%d scored keywords", len(scored)))
}
