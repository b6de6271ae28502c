// Package types provides the shared data model for keyword scoring, title generation and category recommendation.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// KeywordTag is one of the enumerated labels a seller attaches to a keyword.
type KeywordTag string

// Known keyword tags.
const (
	TagTrending KeywordTag = "trending"
	TagLongtail KeywordTag = "longtail"
	TagBrand    KeywordTag = "brand"
	TagCategory KeywordTag = "category"
	TagFeature  KeywordTag = "feature"
	TagSeasonal KeywordTag = "seasonal"
	TagEvent    KeywordTag = "event"
	TagCustom   KeywordTag = "custom"
)

// AllKeywordTags lists every tag in a stable order.
var AllKeywordTags = []KeywordTag{
	TagTrending, TagLongtail, TagBrand, TagCategory,
	TagFeature, TagSeasonal, TagEvent, TagCustom,
}

// MaxTermLength is the maximum number of characters allowed in a keyword term.
const MaxTermLength = 100

// Keyword is a candidate search keyword with its demand and difficulty signals.
// Score is derived by the scorer and absent until scored.
type Keyword struct {
	ID          string       `json:"id"`
	Term        string       `json:"term" validate:"notblank,max=100"`
	Volume      int          `json:"volume" validate:"gte=0"`
	Competition float64      `json:"competition" validate:"gte=0,lte=100"`
	Weight      *float64     `json:"weight,omitempty" validate:"omitempty,gte=0,lte=1"`
	Tags        []KeywordTag `json:"tags" validate:"dive,oneof=trending longtail brand category feature seasonal event custom"`
	Notes       string       `json:"notes,omitempty"`
	Score       *float64     `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	CreatedAt   time.Time    `json:"created_at,omitzero"`
	UpdatedAt   time.Time    `json:"updated_at,omitzero"`
}

// Validate checks the keyword against its invariants and reports every violation.
func (k *Keyword) Validate() error {
	return validateStruct("keyword", k)
}

// ScoreValue returns the computed score, or 0 when the keyword has not been scored.
func (k *Keyword) ScoreValue() float64 {
	if k.Score == nil {
		return 0
	}
	return *k.Score
}

// HasTag reports whether the keyword carries the given tag.
func (k *Keyword) HasTag(tag KeywordTag) bool {
	for _, t := range k.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizedTerm returns the lower-cased, trimmed term used for matching and uniqueness.
func (k *Keyword) NormalizedTerm() string {
	return NormalizeTerm(k.Term)
}

// NormalizeTerm lower-cases and trims a keyword term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// NormalizeTags lower-cases tags and drops duplicates, keeping first occurrences.
func NormalizeTags(tags []KeywordTag) []KeywordTag {
	seen := make(map[KeywordTag]bool, len(tags))
	out := make([]KeywordTag, 0, len(tags))
	for _, tag := range tags {
		normalized := KeywordTag(strings.ToLower(strings.TrimSpace(string(tag))))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}

// ParseKeywordTag converts free text into a KeywordTag, reporting whether it is a known tag.
func ParseKeywordTag(s string) (KeywordTag, bool) {
	tag := KeywordTag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllKeywordTags {
		if known == tag {
			return tag, true
		}
	}
	return tag, false
}

// KeywordGroupStats aggregates a keyword batch. Volume normalization is relative to the batch.
type KeywordGroupStats struct {
	MinVolume      int     `json:"min_volume"`
	MaxVolume      int     `json:"max_volume"`
	AvgVolume      float64 `json:"avg_volume"`
	MinCompetition float64 `json:"min_competition"`
	MaxCompetition float64 `json:"max_competition"`
	AvgCompetition float64 `json:"avg_competition"`
	Count          int     `json:"count"`
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
