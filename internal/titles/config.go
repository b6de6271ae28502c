// Package titles generates, post-processes and scores marketplace listing-title candidates.
package titles

import "github.com/jonathan/listing-optimizer/internal/types"

// MaxResults is the number of ranked titles returned by GenerateTitles.
const MaxResults = 10

// Config controls title generation.
type Config struct {
	// Stopwords are banned substrings; any token containing one is dropped (case-insensitive).
	Stopwords []string `json:"stopwords" yaml:"stopwords"`
	// MaxLength is the maximum title length in characters. Longer titles are flagged, never truncated.
	MaxLength   int `json:"max_length" yaml:"max_length" validate:"gt=0"`
	MinKeywords int `json:"min_keywords" yaml:"min_keywords" validate:"gte=1"`
	MaxKeywords int `json:"max_keywords" yaml:"max_keywords" validate:"gtefield=MinKeywords"`
	// RemoveDuplicates drops repeated tokens, keeping the first occurrence.
	RemoveDuplicates bool `json:"remove_duplicates" yaml:"remove_duplicates"`
	// GenerateSpacingVariants attaches spaced and unspaced renderings to every title.
	GenerateSpacingVariants bool `json:"generate_spacing_variants" yaml:"generate_spacing_variants"`
}

// DefaultConfig returns the generation settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Stopwords:               []string{},
		MaxLength:               50,
		MinKeywords:             1,
		MaxKeywords:             3,
		RemoveDuplicates:        true,
		GenerateSpacingVariants: true,
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	return types.ValidateStruct("title config", c)
}
