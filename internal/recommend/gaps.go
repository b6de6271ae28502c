package recommend

import (
	"strings"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// FindKeywordGaps returns competitor terms absent from the catalog.
// Matching is case-insensitive; the result keeps first-seen order with duplicates removed.
func FindKeywordGaps(catalog []types.Keyword, competitorTerms []string) []string {
	known := make(map[string]bool, len(catalog))
	for _, k := range catalog {
		known[k.NormalizedTerm()] = true
	}

	gaps := make([]string, 0)
	for _, term := range competitorTerms {
		normalized := types.NormalizeTerm(term)
		if normalized == "" || known[normalized] {
			continue
		}
		known[normalized] = true
		gaps = append(gaps, strings.TrimSpace(term))
	}
	return gaps
}
