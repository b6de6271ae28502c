//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyword_Validate(t *testing.T) {
	tests := []struct {
		name       string
		keyword    Keyword
		wantFields []string
	}{
		{
			name:    "valid keyword",
			keyword: Keyword{Term: "스마트폰", Volume: 10000, Competition: 85, Tags: []KeywordTag{TagTrending}},
		},
		{
			name:    "valid keyword with weight and score",
			keyword: Keyword{Term: "케이스", Volume: 0, Competition: 0, Weight: Float64Ptr(1), Score: Float64Ptr(100)},
		},
		{
			name:       "blank term",
			keyword:    Keyword{Term: "   ", Volume: 10},
			wantFields: []string{"term"},
		},
		{
			name:       "term too long",
			keyword:    Keyword{Term: strings.Repeat("가", MaxTermLength+1)},
			wantFields: []string{"term"},
		},
		{
			name:       "every numeric field out of range",
			keyword:    Keyword{Term: "ok", Volume: -1, Competition: 101, Weight: Float64Ptr(1.5), Score: Float64Ptr(-3)},
			wantFields: []string{"volume", "competition", "weight", "score"},
		},
		{
			name:       "unknown tag",
			keyword:    Keyword{Term: "ok", Tags: []KeywordTag{TagBrand, "viral"}},
			wantFields: []string{"tags[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.keyword.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			ve, ok := AsValidationError(err)
			require.True(t, ok, "expected *ValidationError, got %T", err)
			assert.Equal(t, "keyword", ve.Subject)

			fields := make([]string, 0, len(ve.Violations))
			for _, v := range ve.Violations {
				fields = append(fields, v.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestKeyword_TermLengthCountsCharacters(t *testing.T) {
	// 100 Hangul syllables are 300 bytes but exactly at the limit
	k := Keyword{Term: strings.Repeat("가", MaxTermLength)}
	assert.NoError(t, k.Validate())
}

func TestKeyword_ScoreValue(t *testing.T) {
	k := Keyword{Term: "a"}
	assert.Equal(t, 0.0, k.ScoreValue())

	k.Score = Float64Ptr(42.5)
	assert.Equal(t, 42.5, k.ScoreValue())
}

func TestKeyword_HasTagAndNormalizedTerm(t *testing.T) {
	k := Keyword{Term: "  Galaxy Case ", Tags: []KeywordTag{TagBrand}}
	assert.True(t, k.HasTag(TagBrand))
	assert.False(t, k.HasTag(TagEvent))
	assert.Equal(t, "galaxy case", k.NormalizedTerm())
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]KeywordTag{"Brand", "trending", "brand", "", " TRENDING "})
	assert.Equal(t, []KeywordTag{TagBrand, TagTrending}, got)
	assert.Empty(t, NormalizeTags(nil))
}

func TestParseKeywordTag(t *testing.T) {
	tag, ok := ParseKeywordTag(" Seasonal ")
	assert.True(t, ok)
	assert.Equal(t, TagSeasonal, tag)

	_, ok = ParseKeywordTag("viral")
	assert.False(t, ok)
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{Subject: "keyword"}
	assert.NoError(t, ve.Err())

	ve.Add("term", "is required")
	ve.Add("volume", "must be >= 0")
	require.Error(t, ve.Err())
	assert.Equal(t, "invalid keyword: term: is required; volume: must be >= 0", ve.Error())
}

func TestValidationError_Merge(t *testing.T) {
	outer := &ValidationError{Subject: "import"}
	outer.Merge("rows[2]", &ValidationError{Violations: []FieldViolation{{Field: "term", Message: "is required"}}})
	outer.Merge("rows[3]", nil)

	require.Len(t, outer.Violations, 1)
	assert.Equal(t, "rows[2].term", outer.Violations[0].Field)
}
