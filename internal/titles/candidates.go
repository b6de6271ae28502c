package titles

import (
	"strings"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// maxCombinationCandidates caps the extra candidates built from keyword re-orderings.
const maxCombinationCandidates = 5

// buildCandidates assembles raw title strings from the ordered keyword terms and the
// product components: five fixed slot layouts, then keyword pair and triple re-orderings.
// Empty and repeated candidates are dropped.
func buildCandidates(terms []string, c types.ProductTitleComponents) []string {
	keywordPhrase := strings.Join(terms, " ")
	features := joinNonEmpty(c.Features)

	layouts := [][]string{
		// keyword-first
		{keywordPhrase, c.Category, c.Demographic, features, c.Usage},
		// category-first
		{c.Category, keywordPhrase, features, c.Demographic, c.Usage},
		// feature-highlight
		{features, keywordPhrase, c.Category, c.Demographic, c.Usage},
		// demographic-first
		{c.Demographic, keywordPhrase, c.Category, features, c.Usage},
		// usage-first
		{c.Usage, keywordPhrase, c.Category, features, c.Demographic},
	}

	if len(terms) >= 2 {
		combos := keywordCombinations(terms)
		if len(combos) > maxCombinationCandidates {
			combos = combos[:maxCombinationCandidates]
		}
		for _, combo := range combos {
			layouts = append(layouts, []string{strings.Join(combo, " "), c.Category, features})
		}
	}

	seen := make(map[string]bool, len(layouts))
	candidates := make([]string, 0, len(layouts))
	for _, layout := range layouts {
		candidate := joinNonEmpty(layout)
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		candidates = append(candidates, candidate)
	}
	return candidates
}

// keywordCombinations lists every ordered pair of terms followed by every 3-combination
// in the terms' own order.
func keywordCombinations(terms []string) [][]string {
	var combos [][]string
	for i := range terms {
		for j := range terms {
			if i != j {
				combos = append(combos, []string{terms[i], terms[j]})
			}
		}
	}
	for i := 0; i < len(terms); i++ {
		for j := i + 1; j < len(terms); j++ {
			for k := j + 1; k < len(terms); k++ {
				combos = append(combos, []string{terms[i], terms[j], terms[k]})
			}
		}
	}
	return combos
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
