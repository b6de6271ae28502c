package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/types"
)

var recommendCategoriesCmd = &cobra.Command{
	Use:   "recommend-categories",
	Short: "Suggest marketplace categories for a product",
	Long: `Matches keyword terms and product components against the category rules and prints up to
--max suggestions with their confidence, reasons and required attributes. Keywords come from
--keyword flags, or from a scored keyword file given with --in.`,
	RunE: runRecommendCategories,
}

var categoryChecklistCmd = &cobra.Command{
	Use:   "category-checklist <category>",
	Short: "List the attributes a category requires",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryChecklist,
}

var searchCategoriesCmd = &cobra.Command{
	Use:   "search-categories [query]",
	Short: "Search category rules by name, keyword or reason",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearchCategories,
}

var (
	recommendCategoriesInput      string
	recommendCategoriesOutput     string
	recommendCategoriesMax        int
	recommendCategoriesComponents componentFlags
)

func init() {
	recommendCategoriesCmd.Flags().StringVarP(&recommendCategoriesInput, "in", "i", "", "Path to keyword CSV or JSON file")
	recommendCategoriesCmd.Flags().StringVarP(&recommendCategoriesOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	recommendCategoriesCmd.Flags().IntVar(&recommendCategoriesMax, "max", 0, "Maximum number of suggestions (default 3)")
	recommendCategoriesComponents.register(recommendCategoriesCmd)

	rootCmd.AddCommand(recommendCategoriesCmd)
	rootCmd.AddCommand(categoryChecklistCmd)
	rootCmd.AddCommand(searchCategoriesCmd)
}

func runRecommendCategories(cmd *cobra.Command, _ []string) error {
	if recommendCategoriesInput == "" && recommendCategoriesComponents.isEmpty() {
		return fmt.Errorf("nothing to match: pass --in, --keyword or a product component flag")
	}
	if recommendCategoriesMax < 0 {
		return fmt.Errorf("--max must be >= 0, got %d", recommendCategoriesMax)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	engines, err := a.engines()
	if err != nil {
		return err
	}

	// Flag keywords have no volume data; they are matched by term only.
	components := recommendCategoriesComponents.components()
	keywords := make([]types.Keyword, 0, len(components.Keywords))
	for _, term := range components.Keywords {
		keywords = append(keywords, types.Keyword{Term: term})
	}
	if recommendCategoriesInput != "" {
		fileKeywords, err := readKeywordFile(recommendCategoriesInput)
		if err != nil {
			return err
		}
		keywords = append(keywords, engines.Scorer.ScoreMissing(fileKeywords)...)
	}
	components.Keywords = nil

	matches := engines.Categories.RecommendCategories(keywords, &components, recommendCategoriesMax)
	a.logger.Info("recommended categories", "count", len(matches))

	if a.printer != nil {
		a.printer.PrintCategories(matches)
	}
	return writeOutput(cmd, recommendCategoriesOutput, matches, fmt.Sprintf("%d category suggestions", len(matches)))
}

func runCategoryChecklist(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	engines, err := a.engines()
	if err != nil {
		return err
	}

	attrs, err := engines.Categories.CategoryChecklist(args[0])
	if err != nil {
		return err
	}
	if a.printer != nil {
		a.printer.PrintChecklist(args[0], attrs)
	}
	return writeOutput(cmd, "", attrs, "checklist")
}

func runSearchCategories(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	engines, err := a.engines()
	if err != nil {
		return err
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	rules := engines.Categories.SearchCategories(query)

	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.CategoryName
	}
	a.logger.Debug("searched categories", "query", query, "matches", strings.Join(names, ", "))
	return writeOutput(cmd, "", rules, "category rules")
}
