// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/listing-optimizer/internal/category"
	"github.com/jonathan/listing-optimizer/internal/titles"
	"github.com/jonathan/listing-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

func tagList(tags []types.KeywordTag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// PrintKeywordScores outputs scored keywords, best first as given.
func (p *Printer) PrintKeywordScores(keywords []types.Keyword) {
	if len(keywords) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keywords scored: %d\n\n", len(keywords)))

	count := min(len(keywords), maxItemsToShow)
	for i := 0; i < count; i++ {
		kw := keywords[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, kw.Term))
		sb.WriteString(fmt.Sprintf("    Score: %.2f  Volume: %d  Competition: %.0f\n", kw.ScoreValue(), kw.Volume, kw.Competition))
		if len(kw.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("    Tags: %s\n", tagList(kw.Tags)))
		}
	}
	if len(keywords) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(keywords)-maxItemsToShow))
	}

	p.printBox("KEYWORD SCORES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the recommended keyword subset.
func (p *Printer) PrintRecommendations(selected []types.Keyword, summary string) {
	var sb strings.Builder
	sb.WriteString(summary + "\n")
	if len(selected) > 0 {
		sb.WriteString("\n")
	}
	for _, kw := range selected {
		sb.WriteString(fmt.Sprintf("  • %s (%.2f)", kw.Term, kw.ScoreValue()))
		if len(kw.Tags) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s]", tagList(kw.Tags)))
		}
		sb.WriteString("\n")
	}

	p.printBox("RECOMMENDED KEYWORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTitles outputs generated titles with their scores and issues.
func (p *Printer) PrintTitles(generated []types.ProductTitle) {
	if len(generated) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Titles generated: %d\n\n", len(generated)))

	count := min(len(generated), maxItemsToShow)
	for i := 0; i < count; i++ {
		title := generated[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, title.TitleText))
		sb.WriteString(fmt.Sprintf("    Score: %.2f\n", title.Score))
		for _, issue := range title.Issues {
			sb.WriteString(fmt.Sprintf("    ⚠ %s\n", issue))
		}
		if title.SpacingVariants != nil {
			sb.WriteString(fmt.Sprintf("    Unspaced: %s\n", title.SpacingVariants.Unspaced))
		}
	}
	if len(generated) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(generated)-maxItemsToShow))
	}

	p.printBox("LISTING TITLES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTitleQuality outputs the sub-scores of one evaluated title.
func (p *Printer) PrintTitleQuality(text string, q titles.Quality) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:   %s\n", text))
	sb.WriteString(fmt.Sprintf("Overall: %.2f\n\n", q.Overall))
	sb.WriteString(fmt.Sprintf("  Keyword placement: %.2f\n", q.KeywordPlacement))
	sb.WriteString(fmt.Sprintf("  Readability:       %.2f\n", q.Readability))
	sb.WriteString(fmt.Sprintf("  Length:            %.2f\n", q.Length))
	sb.WriteString(fmt.Sprintf("  Uniqueness:        %.2f\n", q.Uniqueness))

	if len(q.Issues) > 0 {
		sb.WriteString("\nIssues:\n")
		for _, issue := range q.Issues {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", issue))
		}
	}
	if len(q.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, s := range q.Suggestions {
			sb.WriteString(fmt.Sprintf("  → %s\n", s))
		}
	}

	p.printBox("TITLE QUALITY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCategories outputs ranked category suggestions with their evidence.
func (p *Printer) PrintCategories(matches []category.Match) {
	if len(matches) == 0 {
		p.printBox("CATEGORY SUGGESTIONS", "No matching categories")
		return
	}

	var sb strings.Builder
	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("#%d  %s (confidence %d)\n", i+1, m.Suggestion.Name, m.Suggestion.Confidence))
		for _, reason := range m.Suggestion.Reasons {
			sb.WriteString(fmt.Sprintf("    • %s\n", reason))
		}
		required := 0
		for _, attr := range m.Suggestion.Attributes {
			if attr.Required {
				required++
			}
		}
		sb.WriteString(fmt.Sprintf("    Required attributes: %d\n", required))
		if i < len(matches)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CATEGORY SUGGESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintChecklist outputs the attribute checklist of one category.
func (p *Printer) PrintChecklist(name string, attrs []types.CategoryAttribute) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Category: %s\n\n", name))
	for _, attr := range attrs {
		mark := "○"
		if attr.Required {
			mark = "●"
		}
		sb.WriteString(fmt.Sprintf("  %s %s (%s)", mark, attr.Name, attr.Type))
		if len(attr.Options) > 0 {
			sb.WriteString(": " + strings.Join(attr.Options, "/"))
		}
		if attr.Placeholder != "" {
			sb.WriteString(" " + attr.Placeholder)
		}
		sb.WriteString("\n")
	}

	p.printBox("CATEGORY CHECKLIST", strings.TrimSuffix(sb.String(), "\n"))
}
