package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/exchange"
	"github.com/jonathan/listing-optimizer/internal/store"
	"github.com/jonathan/listing-optimizer/internal/types"
)

var importKeywordsCmd = &cobra.Command{
	Use:   "import-keywords",
	Short: "Import a keyword file into the configured store",
	Long: `Reads a CSV or JSON keyword file, validates every row and adds the keywords to the configured
store. The batch is rejected as a whole when any row is invalid or its term already exists.`,
	RunE: runImportKeywords,
}

var exportKeywordsCmd = &cobra.Command{
	Use:   "export-keywords",
	Short: "Export the stored keyword catalog to CSV or JSON",
	RunE:  runExportKeywords,
}

var rescoreKeywordsCmd = &cobra.Command{
	Use:   "rescore-keywords",
	Short: "Score the stored catalog as one batch and save the scores",
	RunE:  runRescoreKeywords,
}

var (
	importKeywordsInput  string
	exportKeywordsOutput string
	exportKeywordsFormat string
)

func init() {
	importKeywordsCmd.Flags().StringVarP(&importKeywordsInput, "in", "i", "", "Path to keyword CSV or JSON file (required)")
	if err := importKeywordsCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	exportKeywordsCmd.Flags().StringVarP(&exportKeywordsOutput, "out", "o", "", "Path to output file (default stdout)")
	exportKeywordsCmd.Flags().StringVarP(&exportKeywordsFormat, "format", "f", "", "Output format: csv or json (default from --out extension, else json)")

	rootCmd.AddCommand(importKeywordsCmd)
	rootCmd.AddCommand(exportKeywordsCmd)
	rootCmd.AddCommand(rescoreKeywordsCmd)
}

func runImportKeywords(cmd *cobra.Command, _ []string) error {
	keywords, err := readKeywordFile(importKeywordsInput)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	existing, err := st.ListKeywords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored keywords: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, kw := range existing {
		known[kw.NormalizedTerm()] = true
	}
	verr := &types.ValidationError{Subject: "keyword batch"}
	for i, kw := range keywords {
		if known[kw.NormalizedTerm()] {
			verr.Add(fmt.Sprintf("[%d].term", i), "already exists in the catalog")
		}
	}
	if err := verr.Err(); err != nil {
		return err
	}

	for _, kw := range keywords {
		if _, err := st.CreateKeyword(ctx, kw); err != nil {
			return fmt.Errorf("failed to store keyword %q: %w", kw.Term, err)
		}
	}
	a.logger.Info("imported keywords", "count", len(keywords), "driver", a.cfg.Store.Driver)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported %d keywords from %s\n", len(keywords), importKeywordsInput)
	return nil
}

func runExportKeywords(cmd *cobra.Command, _ []string) error {
	format, err := exportFormat(exportKeywordsFormat, exportKeywordsOutput)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	keywords, err := st.ListKeywords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored keywords: %w", err)
	}

	if exportKeywordsOutput == "" {
		return exchange.ExportKeywords(cmd.OutOrStdout(), format, keywords)
	}

	if err := ensureDir(exportKeywordsOutput); err != nil {
		return err
	}
	f, err := os.Create(exportKeywordsOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportKeywordsOutput, err)
	}
	if err := exchange.ExportKeywords(f, format, keywords); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", exportKeywordsOutput, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully exported %d keywords to %s\n", len(keywords), exportKeywordsOutput)
	return nil
}

// exportFormat resolves --format, falling back to the output extension and then JSON.
func exportFormat(name, outPath string) (exchange.Format, error) {
	switch {
	case name != "":
		return exchange.ParseFormat(name)
	case outPath != "":
		return exchange.FormatFromPath(outPath)
	default:
		return exchange.FormatJSON, nil
	}
}

func runRescoreKeywords(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	engines, err := a.engines()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	keywords, err := st.ListKeywords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored keywords: %w", err)
	}
	scored := engines.Scorer.CalculateScores(keywords)
	scores := make(map[string]float64, len(scored))
	for _, kw := range scored {
		scores[kw.ID] = kw.ScoreValue()
	}
	if err := st.SaveScores(ctx, scores); err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}
	if err := st.PutSetting(ctx, store.SettingWeights, engines.Scorer.Weights()); err != nil {
		return fmt.Errorf("failed to save scoring weights: %w", err)
	}

	if a.printer != nil {
		a.printer.PrintKeywordScores(scored)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully rescored %d keywords\n", len(scored))
	return nil
}
