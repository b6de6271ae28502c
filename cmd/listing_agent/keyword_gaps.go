package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/recommend"
)

var keywordGapsCmd = &cobra.Command{
	Use:   "keyword-gaps",
	Short: "List competitor terms missing from the keyword catalog",
	Long: `Compares competitor terms (from --term flags and/or a --competitors file with one term per line)
against the catalog, ignoring case, and prints the missing terms in first-seen order.`,
	RunE: runKeywordGaps,
}

var (
	keywordGapsInput       string
	keywordGapsCompetitors string
	keywordGapsTerms       []string
	keywordGapsOutput      string
)

func init() {
	keywordGapsCmd.Flags().StringVarP(&keywordGapsInput, "in", "i", "", "Path to keyword CSV or JSON file (default: stored catalog)")
	keywordGapsCmd.Flags().StringVarP(&keywordGapsCompetitors, "competitors", "c", "", "Path to a file with one competitor term per line")
	keywordGapsCmd.Flags().StringSliceVarP(&keywordGapsTerms, "term", "t", nil, "Competitor term (repeatable)")
	keywordGapsCmd.Flags().StringVarP(&keywordGapsOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	rootCmd.AddCommand(keywordGapsCmd)
}

func runKeywordGaps(cmd *cobra.Command, _ []string) error {
	terms := append([]string{}, keywordGapsTerms...)
	if keywordGapsCompetitors != "" {
		fileTerms, err := readLines(keywordGapsCompetitors)
		if err != nil {
			return err
		}
		terms = append(terms, fileTerms...)
	}
	if len(terms) == 0 {
		return fmt.Errorf("no competitor terms: pass --term or --competitors")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	catalog, err := a.loadKeywords(cmd.Context(), keywordGapsInput)
	if err != nil {
		return err
	}

	gaps := recommend.FindKeywordGaps(catalog, terms)
	a.logger.Info("found keyword gaps", "competitor_terms", len(terms), "gaps", len(gaps))
	return writeOutput(cmd, keywordGapsOutput, gaps, fmt.Sprintf("%d keyword gaps", len(gaps)))
}

// readLines returns the non-blank, trimmed lines of a file.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
