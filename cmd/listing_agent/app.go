package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/category"
	"github.com/jonathan/listing-optimizer/internal/config"
	"github.com/jonathan/listing-optimizer/internal/exchange"
	"github.com/jonathan/listing-optimizer/internal/logging"
	"github.com/jonathan/listing-optimizer/internal/observability"
	"github.com/jonathan/listing-optimizer/internal/pipeline"
	"github.com/jonathan/listing-optimizer/internal/recommend"
	"github.com/jonathan/listing-optimizer/internal/scoring"
	"github.com/jonathan/listing-optimizer/internal/store"
	"github.com/jonathan/listing-optimizer/internal/titles"
	"github.com/jonathan/listing-optimizer/internal/types"
)

// app holds what every command needs: the effective config, a logger and the verbose printer.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
	printer  *observability.Printer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(rootConfigPath, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootLogLevel != "" {
		cfg.LogLevel = rootLogLevel
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, closeLog: closeLog}
	if rootVerbose {
		a.printer = observability.NewPrinter(cmd.ErrOrStderr())
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
	}
}

// engines builds the scorer, title generator and category recommender from the config.
func (a *app) engines() (pipeline.Engines, error) {
	scorer, err := scoring.NewScorer(*a.cfg.Weights)
	if err != nil {
		return pipeline.Engines{}, fmt.Errorf("invalid scoring weights: %w", err)
	}
	generator, err := titles.NewGenerator(*a.cfg.Titles)
	if err != nil {
		return pipeline.Engines{}, fmt.Errorf("invalid title config: %w", err)
	}

	var categories *category.Recommender
	if a.cfg.RulesPath != "" {
		rules, err := category.LoadRules(a.cfg.RulesPath)
		if err != nil {
			return pipeline.Engines{}, err
		}
		categories, err = category.NewRecommender(rules)
		if err != nil {
			return pipeline.Engines{}, err
		}
		a.logger.Debug("loaded category rules", "path", a.cfg.RulesPath, "rules", len(rules))
	} else {
		categories, err = category.NewDefaultRecommender()
		if err != nil {
			return pipeline.Engines{}, err
		}
	}

	return pipeline.Engines{Scorer: scorer, Generator: generator, Categories: categories}, nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, a.cfg.Store)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("opened store", "driver", a.cfg.Store.Driver)
	return st, nil
}

// loadKeywords reads a keyword file, or the configured store's catalog when path is empty.
func (a *app) loadKeywords(ctx context.Context, path string) ([]types.Keyword, error) {
	if path != "" {
		return readKeywordFile(path)
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	keywords, err := st.ListKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored keywords: %w", err)
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords: pass --in or import keywords into the %s store", a.cfg.Store.Driver)
	}
	return keywords, nil
}

// random picks the recommendation randomness: the --seed flag, then the configured seed, then a fresh seed.
func (a *app) random(cmd *cobra.Command, seed uint64) recommend.RandomSource {
	switch {
	case cmd.Flags().Changed("seed"):
		return recommend.NewSeededSource(seed)
	case a.cfg.RandomSeed != nil:
		return recommend.NewSeededSource(*a.cfg.RandomSeed)
	default:
		return recommend.NewSeededSource(rand.Uint64())
	}
}

// diversity returns the --diversity flag when set, else the configured factor.
func (a *app) diversity(cmd *cobra.Command, flagValue float64) float64 {
	if cmd.Flags().Changed("diversity") {
		return flagValue
	}
	return *a.cfg.DiversityFactor
}

func readKeywordFile(path string) ([]types.Keyword, error) {
	format, err := exchange.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword file %s: %w", path, err)
	}
	defer f.Close()

	keywords, err := exchange.ImportKeywords(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to import keywords from %s: %w", path, err)
	}
	return keywords, nil
}

// writeOutput writes v as indented JSON to outPath, or to stdout when outPath is empty.
func writeOutput(cmd *cobra.Command, outPath string, v any, what string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}
	data = append(data, '\n')

	if outPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := ensureDir(outPath); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s to output file %s: %w", what, outPath, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully wrote %s to %s\n", what, outPath)
	return nil
}

// ensureDir creates the parent directory of path if needed.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}

// componentFlags are the title component flags shared by several commands.
type componentFlags struct {
	category    string
	demographic string
	keywords    []string
	features    []string
	usage       string
}

func (c *componentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.category, "category", "", "Product category component")
	cmd.Flags().StringVar(&c.demographic, "demographic", "", "Target demographic component")
	cmd.Flags().StringSliceVarP(&c.keywords, "keyword", "k", nil, "Keyword term to include (repeatable)")
	cmd.Flags().StringSliceVar(&c.features, "feature", nil, "Product feature (repeatable)")
	cmd.Flags().StringVar(&c.usage, "usage", "", "Usage or occasion component")
}

func (c *componentFlags) components() types.ProductTitleComponents {
	return types.ProductTitleComponents{
		Category:    c.category,
		Demographic: c.demographic,
		Keywords:    c.keywords,
		Features:    c.features,
		Usage:       c.usage,
	}
}

// isEmpty reports whether no component flag was given.
func (c *componentFlags) isEmpty() bool {
	return c.category == "" && c.demographic == "" && len(c.keywords) == 0 && len(c.features) == 0 && c.usage == ""
}
