package recommend

import (
	"fmt"
	"sort"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// highScoreThreshold admits a keyword regardless of tag overlap.
const highScoreThreshold = 80.0

// Options controls a recommendation run.
type Options struct {
	// Count is the maximum number of keywords returned.
	Count int
	// DiversityFactor in [0,1] is how strongly tag-duplicates are held back:
	// 1 never admits them, 0 always does.
	DiversityFactor float64
	// Random decides tag-duplicate admission. Required when DiversityFactor is below 1.
	Random RandomSource
}

// Recommend picks up to opts.Count keywords, best score first, favouring tag diversity.
// A keyword is admitted when its score exceeds 80, when it adds a tag not yet represented,
// or, failing both, when the random draw is at least DiversityFactor.
func Recommend(keywords []types.Keyword, opts Options) ([]types.Keyword, error) {
	ve := &types.ValidationError{Subject: "recommendation options"}
	if opts.Count < 0 {
		ve.Add("count", "must be >= 0")
	}
	if opts.DiversityFactor < 0 || opts.DiversityFactor > 1 {
		ve.Add("diversity_factor", "must be between 0 and 1")
	}
	if opts.Random == nil && opts.DiversityFactor < 1 {
		ve.Add("random", "is required when diversity_factor is below 1")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	ranked := make([]types.Keyword, len(keywords))
	copy(ranked, keywords)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ScoreValue() > ranked[j].ScoreValue()
	})

	selected := make([]types.Keyword, 0, min(opts.Count, len(ranked)))
	seenTags := make(map[types.KeywordTag]bool)

	for _, k := range ranked {
		if len(selected) >= opts.Count {
			break
		}
		if !admit(k, seenTags, opts) {
			continue
		}
		for _, tag := range k.Tags {
			seenTags[tag] = true
		}
		selected = append(selected, k)
	}

	return selected, nil
}

func admit(k types.Keyword, seenTags map[types.KeywordTag]bool, opts Options) bool {
	if k.ScoreValue() > highScoreThreshold {
		return true
	}
	for _, tag := range k.Tags {
		if !seenTags[tag] {
			return true
		}
	}
	if opts.DiversityFactor >= 1 {
		return false
	}
	return opts.Random.Next() >= opts.DiversityFactor
}

// Describe summarizes a selection for logs and CLI output.
func Describe(selected []types.Keyword) string {
	tags := make(map[types.KeywordTag]bool)
	for _, k := range selected {
		for _, tag := range k.Tags {
			tags[tag] = true
		}
	}
	return fmt.Sprintf("%d keywords covering %d distinct tags", len(selected), len(tags))
}
