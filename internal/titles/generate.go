package titles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// Generator builds ranked listing titles. It holds only its configuration and is safe for concurrent use.
type Generator struct {
	cfg Config
}

// NewGenerator validates cfg and returns a generator using it.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// GenerateTitles validates the request, assembles candidates from the requested keywords and
// components, post-processes and scores each, and returns at most MaxResults titles, best first.
func (g *Generator) GenerateTitles(components types.ProductTitleComponents, catalog []types.Keyword) ([]types.ProductTitle, error) {
	selected, err := g.selectKeywords(components.Keywords, catalog)
	if err != nil {
		return nil, err
	}

	terms := make([]string, len(selected))
	keywordIDs := make([]string, 0, len(selected))
	for i, k := range selected {
		terms[i] = k.Term
		if k.ID != "" {
			keywordIDs = append(keywordIDs, k.ID)
		}
	}

	candidates := buildCandidates(terms, components)
	titles := make([]types.ProductTitle, 0, len(candidates))
	for _, candidate := range candidates {
		text, issues := g.postProcess(candidate)
		if text == "" {
			continue
		}

		quality := g.EvaluateTitle(text, terms...)
		title := types.ProductTitle{
			ID:         uuid.NewString(),
			KeywordIDs: keywordIDs,
			Components: components,
			TitleText:  text,
			Score:      quality.Overall,
			Issues:     append(issues, quality.Issues...),
		}
		if title.Issues == nil {
			title.Issues = []string{}
		}
		if g.cfg.GenerateSpacingVariants {
			variants := GenerateSpacingVariants(text)
			title.SpacingVariants = &variants
		}
		titles = append(titles, title)
	}

	sort.SliceStable(titles, func(i, j int) bool {
		return titles[i].Score > titles[j].Score
	})
	if len(titles) > MaxResults {
		titles = titles[:MaxResults]
	}

	return titles, nil
}

// selectKeywords resolves requested terms against the catalog (case-insensitively) and orders
// them by descending score; unscored keywords rank last. Blank terms are ignored; a term requested
// twice is a violation. Every violation is reported at once.
func (g *Generator) selectKeywords(requested []string, catalog []types.Keyword) ([]types.Keyword, error) {
	ve := &types.ValidationError{Subject: "title request"}

	terms := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for i, term := range requested {
		normalized := types.NormalizeTerm(term)
		if normalized == "" {
			continue
		}
		if seen[normalized] {
			ve.Add(fmt.Sprintf("keywords[%d]", i), fmt.Sprintf("duplicate keyword %q", strings.TrimSpace(term)))
			continue
		}
		seen[normalized] = true
		terms = append(terms, strings.TrimSpace(term))
	}

	if len(terms) == 0 {
		ve.Add("keywords", "at least one keyword is required")
		return nil, ve
	}
	if len(terms) < g.cfg.MinKeywords {
		ve.Add("keywords", fmt.Sprintf("at least %d keywords are required, got %d", g.cfg.MinKeywords, len(terms)))
	}
	if len(terms) > g.cfg.MaxKeywords {
		ve.Add("keywords", fmt.Sprintf("at most %d keywords are allowed, got %d", g.cfg.MaxKeywords, len(terms)))
	}

	index := make(map[string]types.Keyword, len(catalog))
	for _, k := range catalog {
		key := k.NormalizedTerm()
		if _, exists := index[key]; !exists {
			index[key] = k
		}
	}

	selected := make([]types.Keyword, 0, len(terms))
	var missing []string
	for _, term := range terms {
		k, ok := index[types.NormalizeTerm(term)]
		if !ok {
			missing = append(missing, term)
			continue
		}
		selected = append(selected, k)
	}
	if len(missing) > 0 {
		ve.Add("keywords", fmt.Sprintf("not found in keyword catalog: %s", strings.Join(missing, ", ")))
	}

	if err := ve.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].ScoreValue() > selected[j].ScoreValue()
	})
	return selected, nil
}
