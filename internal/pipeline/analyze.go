// Package pipeline runs the end-to-end listing analysis: score the keyword batch, pick a
// diverse subset, then build titles and category suggestions for it in parallel.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/listing-optimizer/internal/category"
	"github.com/jonathan/listing-optimizer/internal/recommend"
	"github.com/jonathan/listing-optimizer/internal/scoring"
	"github.com/jonathan/listing-optimizer/internal/titles"
	"github.com/jonathan/listing-optimizer/internal/types"
)

// Step names reported through progress events.
const (
	StepScore      = "score"
	StepRecommend  = "recommend"
	StepTitles     = "titles"
	StepCategories = "categories"
)

// DefaultRecommendCount is the recommendation size used when a request leaves it unset.
const DefaultRecommendCount = 5

// ProgressEvent represents a progress update during analysis
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when analysis progress occurs. It may be called from several goroutines.
type ProgressCallback func(event ProgressEvent)

// Engines are the configured components an analysis runs on.
type Engines struct {
	Scorer     *scoring.Scorer
	Generator  *titles.Generator
	Categories *category.Recommender
}

// Request is one analysis input.
type Request struct {
	Keywords []types.Keyword `json:"keywords"`
	// Components feed title generation and category matching. When Components.Keywords is
	// empty the recommended terms are used, up to the generator's keyword maximum.
	Components      *types.ProductTitleComponents `json:"components,omitempty"`
	Count           int                           `json:"count,omitempty"`
	DiversityFactor float64                       `json:"diversity_factor"`
	MaxCategories   int                           `json:"max_categories,omitempty"`
}

// Result holds every stage's output.
type Result struct {
	Scored      []types.Keyword              `json:"scored"`
	Recommended []types.Keyword              `json:"recommended"`
	Summary     string                       `json:"summary"`
	Components  types.ProductTitleComponents `json:"components"`
	Titles      []types.ProductTitle         `json:"titles"`
	Categories  []category.Match             `json:"categories"`
}

// Options carries per-call collaborators.
type Options struct {
	Random     recommend.RandomSource
	OnProgress ProgressCallback
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *Options, mu *sync.Mutex, step, message string, content any) {
	if opts.OnProgress == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
}

// Analyze validates the batch and runs every stage. Title generation and category matching run
// concurrently; the first failure cancels the other and is returned.
func Analyze(ctx context.Context, engines Engines, req Request, opts Options) (*Result, error) {
	if engines.Scorer == nil || engines.Generator == nil || engines.Categories == nil {
		return nil, fmt.Errorf("analyze: scorer, generator and category recommender are required")
	}
	if err := ValidateKeywords(req.Keywords); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var progressMu sync.Mutex

	scored := engines.Scorer.CalculateScores(req.Keywords)
	emitProgress(&opts, &progressMu, StepScore, fmt.Sprintf("Scored %d keywords", len(scored)), scored)

	count := req.Count
	if count == 0 {
		count = DefaultRecommendCount
	}
	recommended, err := recommend.Recommend(scored, recommend.Options{
		Count:           count,
		DiversityFactor: req.DiversityFactor,
		Random:          opts.Random,
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation failed: %w", err)
	}
	summary := recommend.Describe(recommended)
	emitProgress(&opts, &progressMu, StepRecommend, summary, recommended)

	components := resolveComponents(req.Components, recommended, engines.Generator.Config().MaxKeywords)

	result := &Result{
		Scored:      scored,
		Recommended: recommended,
		Summary:     summary,
		Components:  components,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		generated, err := engines.Generator.GenerateTitles(components, scored)
		if err != nil {
			return fmt.Errorf("title generation failed: %w", err)
		}
		result.Titles = generated
		emitProgress(&opts, &progressMu, StepTitles, fmt.Sprintf("Generated %d titles", len(generated)), generated)
		return nil
	})

	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		matches := engines.Categories.RecommendCategories(recommended, &components, req.MaxCategories)
		result.Categories = matches
		emitProgress(&opts, &progressMu, StepCategories, fmt.Sprintf("Matched %d categories", len(matches)), matches)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// ValidateKeywords checks every keyword and reports all violations keyed by batch index.
func ValidateKeywords(keywords []types.Keyword) error {
	verr := &types.ValidationError{Subject: "keywords"}
	for i := range keywords {
		if err := keywords[i].Validate(); err != nil {
			ve, ok := types.AsValidationError(err)
			if !ok {
				return err
			}
			verr.Merge(fmt.Sprintf("[%d]", i), ve)
		}
	}
	return verr.Err()
}

func resolveComponents(requested *types.ProductTitleComponents, recommended []types.Keyword, maxKeywords int) types.ProductTitleComponents {
	var components types.ProductTitleComponents
	if requested != nil {
		components = *requested
	}
	if len(components.Keywords) > 0 {
		return components
	}
	components.Keywords = make([]string, 0, maxKeywords)
	seen := make(map[string]bool, maxKeywords)
	for _, kw := range recommended {
		if len(components.Keywords) == maxKeywords {
			break
		}
		if term := kw.NormalizedTerm(); !seen[term] {
			seen[term] = true
			components.Keywords = append(components.Keywords, kw.Term)
		}
	}
	return components
}
