package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full listing analysis",
	Long: `Runs every stage on one keyword batch: scoring, diverse recommendation, title generation and
category matching. Titles and categories are computed concurrently from the recommended keywords.
Keywords come from --in, or from the configured store when --in is omitted.`,
	RunE: runAnalyze,
}

var (
	analyzeInput         string
	analyzeOutput        string
	analyzeCount         int
	analyzeDiversity     float64
	analyzeSeed          uint64
	analyzeMaxCategories int
	analyzeComponents    componentFlags
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "in", "i", "", "Path to keyword CSV or JSON file")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	analyzeCmd.Flags().IntVarP(&analyzeCount, "count", "n", pipeline.DefaultRecommendCount, "Maximum number of keywords to recommend")
	analyzeCmd.Flags().Float64Var(&analyzeDiversity, "diversity", 0, "Diversity factor in [0,1] (default from config)")
	analyzeCmd.Flags().Uint64Var(&analyzeSeed, "seed", 0, "Random seed for a reproducible selection")
	analyzeCmd.Flags().IntVar(&analyzeMaxCategories, "max-categories", 0, "Maximum number of category suggestions (default 3)")
	analyzeComponents.register(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if analyzeCount < 0 {
		return fmt.Errorf("--count must be >= 0, got %d", analyzeCount)
	}
	if analyzeMaxCategories < 0 {
		return fmt.Errorf("--max-categories must be >= 0, got %d", analyzeMaxCategories)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	keywords, err := a.loadKeywords(cmd.Context(), analyzeInput)
	if err != nil {
		return err
	}
	engines, err := a.engines()
	if err != nil {
		return err
	}

	req := pipeline.Request{
		Keywords:        keywords,
		Count:           analyzeCount,
		DiversityFactor: a.diversity(cmd, analyzeDiversity),
		MaxCategories:   analyzeMaxCategories,
	}
	if !analyzeComponents.isEmpty() {
		components := analyzeComponents.components()
		req.Components = &components
	}

	result, err := pipeline.Analyze(cmd.Context(), engines, req, pipeline.Options{
		Random: a.random(cmd, analyzeSeed),
		OnProgress: func(event pipeline.ProgressEvent) {
			a.logger.Debug("analysis progress", "step", event.Step, "message", event.Message)
		},
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	a.logger.Info("analysis complete",
		"keywords", len(result.Scored),
		"recommended", len(result.Recommended),
		"titles", len(result.Titles),
		"categories", len(result.Categories))

	if a.printer != nil {
		a.printer.PrintKeywordScores(result.Scored)
		a.printer.PrintRecommendations(result.Recommended, result.Summary)
		a.printer.PrintTitles(result.Titles)
		a.printer.PrintCategories(result.Categories)
	}
	return writeOutput(cmd, analyzeOutput, result, "analysis")
}
