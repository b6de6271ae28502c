package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/pipeline"
	"github.com/jonathan/listing-optimizer/internal/recommend"
)

var recommendKeywordsCmd = &cobra.Command{
	Use:   "recommend-keywords",
	Short: "Recommend a diverse top-N keyword set",
	Long: `Scores the batch, then picks up to --count keywords best first. A keyword is admitted when its
score exceeds 80 or it adds a new tag; otherwise it is admitted when a random draw is at least the
diversity factor. Pass --seed for a reproducible selection.`,
	RunE: runRecommendKeywords,
}

var (
	recommendKeywordsInput     string
	recommendKeywordsOutput    string
	recommendKeywordsCount     int
	recommendKeywordsDiversity float64
	recommendKeywordsSeed      uint64
)

func init() {
	recommendKeywordsCmd.Flags().StringVarP(&recommendKeywordsInput, "in", "i", "", "Path to keyword CSV or JSON file")
	recommendKeywordsCmd.Flags().StringVarP(&recommendKeywordsOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	recommendKeywordsCmd.Flags().IntVarP(&recommendKeywordsCount, "count", "n", pipeline.DefaultRecommendCount, "Maximum number of keywords to recommend")
	recommendKeywordsCmd.Flags().Float64Var(&recommendKeywordsDiversity, "diversity", 0, "Diversity factor in [0,1] (default from config)")
	recommendKeywordsCmd.Flags().Uint64Var(&recommendKeywordsSeed, "seed", 0, "Random seed for a reproducible selection")
	rootCmd.AddCommand(recommendKeywordsCmd)
}

func runRecommendKeywords(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	keywords, err := a.loadKeywords(cmd.Context(), recommendKeywordsInput)
	if err != nil {
		return err
	}
	engines, err := a.engines()
	if err != nil {
		return err
	}

	selected, err := recommend.Recommend(engines.Scorer.CalculateScores(keywords), recommend.Options{
		Count:           recommendKeywordsCount,
		DiversityFactor: a.diversity(cmd, recommendKeywordsDiversity),
		Random:          a.random(cmd, recommendKeywordsSeed),
	})
	if err != nil {
		return fmt.Errorf("failed to recommend keywords: %w", err)
	}
	summary := recommend.Describe(selected)
	a.logger.Info("recommended keywords", "summary", summary)

	if a.printer != nil {
		a.printer.PrintRecommendations(selected, summary)
	}
	return writeOutput(cmd, recommendKeywordsOutput, selected, fmt.Sprintf("%d recommended keywords", len(selected)))
}
