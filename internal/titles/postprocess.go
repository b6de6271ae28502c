package titles

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// postProcess applies stopword removal, duplicate removal, spacing normalization and
// the length check, in that order. The returned issues describe what was changed or flagged.
func (g *Generator) postProcess(candidate string) (string, []string) {
	var issues []string

	tokens := strings.Fields(candidate)

	tokens, removed := removeStopwords(tokens, g.cfg.Stopwords)
	if len(removed) > 0 {
		issues = append(issues, fmt.Sprintf("Removed stopwords: %s", strings.Join(removed, ", ")))
	}

	if g.cfg.RemoveDuplicates {
		var dropped []string
		tokens, dropped = removeDuplicateTokens(tokens)
		if len(dropped) > 0 {
			issues = append(issues, fmt.Sprintf("Removed duplicate words: %s", strings.Join(dropped, ", ")))
		}
	}

	text := NormalizeSpacing(strings.Join(tokens, " "))

	if n := utf8.RuneCountInString(text); n > g.cfg.MaxLength {
		issues = append(issues, lengthIssue(n, g.cfg.MaxLength))
	}

	return text, issues
}

func lengthIssue(length, maxLength int) string {
	return fmt.Sprintf("Title is %d characters, exceeding the maximum of %d", length, maxLength)
}

// removeStopwords drops every token containing a stopword as a case-insensitive substring.
func removeStopwords(tokens, stopwords []string) ([]string, []string) {
	banned := make([]string, 0, len(stopwords))
	for _, sw := range stopwords {
		if sw = strings.ToLower(strings.TrimSpace(sw)); sw != "" {
			banned = append(banned, sw)
		}
	}
	if len(banned) == 0 {
		return tokens, nil
	}

	kept := make([]string, 0, len(tokens))
	var removed []string
	for _, token := range tokens {
		lower := strings.ToLower(token)
		hit := false
		for _, sw := range banned {
			if strings.Contains(lower, sw) {
				hit = true
				break
			}
		}
		if hit {
			removed = append(removed, token)
			continue
		}
		kept = append(kept, token)
	}
	return kept, removed
}

// removeDuplicateTokens keeps the first occurrence of each token, compared case-insensitively.
func removeDuplicateTokens(tokens []string) ([]string, []string) {
	seen := make(map[string]bool, len(tokens))
	kept := make([]string, 0, len(tokens))
	var dropped []string
	for _, token := range tokens {
		key := strings.ToLower(token)
		if seen[key] {
			dropped = append(dropped, token)
			continue
		}
		seen[key] = true
		kept = append(kept, token)
	}
	return kept, dropped
}
