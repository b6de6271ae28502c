//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ProductTitleComponents are the structured parts a listing title is assembled from.
// Keywords holds the keyword terms to weave in, in caller order.
type ProductTitleComponents struct {
	Category    string   `json:"category,omitempty"`
	Demographic string   `json:"demographic,omitempty"`
	Keywords    []string `json:"keywords"`
	Features    []string `json:"features,omitempty"`
	Usage       string   `json:"usage,omitempty"`
}

// Text joins every non-keyword component with spaces.
func (c *ProductTitleComponents) Text() string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, 4+len(c.Features))
	for _, p := range []string{c.Category, c.Demographic, c.Usage} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	for _, f := range c.Features {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// SpacingVariants holds two renderings of one title that differ only in whitespace.
type SpacingVariants struct {
	Spaced   string `json:"spaced"`
	Unspaced string `json:"unspaced"`
}

// ProductTitle is a generated listing-title candidate with its quality score and advisory issues.
type ProductTitle struct {
	ID              string                 `json:"id"`
	KeywordIDs      []string               `json:"keyword_ids"`
	Components      ProductTitleComponents `json:"components"`
	TitleText       string                 `json:"title_text"`
	Score           float64                `json:"score"`
	Issues          []string               `json:"issues"`
	SpacingVariants *SpacingVariants       `json:"spacing_variants,omitempty"`
}
