package titles

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/listing-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []types.Keyword {
	return []types.Keyword{
		{ID: "kw-phone", Term: "스마트폰", Volume: 10000, Competition: 85, Score: types.Float64Ptr(40)},
		{ID: "kw-case", Term: "케이스", Volume: 500, Competition: 20, Score: types.Float64Ptr(90)},
		{ID: "kw-galaxy", Term: "Galaxy", Volume: 2000, Competition: 50},
		{ID: "kw-clear", Term: "투명", Volume: 800, Competition: 30, Score: types.Float64Ptr(60)},
	}
}

func newTestGenerator(t *testing.T, mutate func(*Config)) *Generator {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	g, err := NewGenerator(cfg)
	require.NoError(t, err)
	return g
}

func TestNewGenerator_InvalidConfig(t *testing.T) {
	_, err := NewGenerator(Config{MaxLength: 0, MinKeywords: 0, MaxKeywords: -1})
	require.Error(t, err)

	ve, ok := types.AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Violations, 3)
}

func TestGenerateTitles_MissingKeywordIsReported(t *testing.T) {
	g := newTestGenerator(t, nil)
	catalog := []types.Keyword{{ID: "kw-phone", Term: "스마트폰", Volume: 10000, Competition: 85}}

	_, err := g.GenerateTitles(types.ProductTitleComponents{Keywords: []string{"스마트폰", "케이스"}}, catalog)
	require.Error(t, err)

	ve, ok := types.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Violations, 1)
	assert.Equal(t, "keywords", ve.Violations[0].Field)
	assert.Equal(t, "not found in keyword catalog: 케이스", ve.Violations[0].Message)
}

func TestGenerateTitles_ReportsAllViolations(t *testing.T) {
	g := newTestGenerator(t, nil)

	_, err := g.GenerateTitles(types.ProductTitleComponents{
		Keywords: []string{"스마트폰", "없는키워드", "케이스", "또없음"},
	}, testCatalog())
	require.Error(t, err)

	ve, ok := types.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Violations, 2)
	assert.Equal(t, "at most 3 keywords are allowed, got 4", ve.Violations[0].Message)
	assert.Equal(t, "not found in keyword catalog: 없는키워드, 또없음", ve.Violations[1].Message)
}

func TestGenerateTitles_RequiresKeywords(t *testing.T) {
	g := newTestGenerator(t, nil)

	_, err := g.GenerateTitles(types.ProductTitleComponents{Category: "의류", Keywords: []string{" ", ""}}, testCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one keyword is required")
}

func TestGenerateTitles_MinKeywords(t *testing.T) {
	g := newTestGenerator(t, func(c *Config) { c.MinKeywords = 2 })

	_, err := g.GenerateTitles(types.ProductTitleComponents{Keywords: []string{"케이스"}}, testCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 keywords are required, got 1")
}

func TestGenerateTitles_DuplicateKeywordIsReported(t *testing.T) {
	g := newTestGenerator(t, nil)

	_, err := g.GenerateTitles(types.ProductTitleComponents{Keywords: []string{"케이스", "투명", " 케이스"}}, testCatalog())
	require.Error(t, err)

	ve, ok := types.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Violations, 1)
	assert.Equal(t, "keywords[2]", ve.Violations[0].Field)
	assert.Contains(t, ve.Violations[0].Message, "케이스")
}

func TestGenerateTitles_SpacedKeywordCountsAsLeading(t *testing.T) {
	g := newTestGenerator(t, nil)
	catalog := []types.Keyword{{ID: "kw-iphone-case", Term: "아이폰15케이스", Volume: 3000, Competition: 40}}

	titles, err := g.GenerateTitles(types.ProductTitleComponents{
		Keywords: []string{"아이폰15케이스"},
		Category: "휴대폰 액세서리",
	}, catalog)
	require.NoError(t, err)

	var leading *types.ProductTitle
	for i := range titles {
		if titles[i].TitleText == "아이폰15 케이스 휴대폰 액세서리" {
			leading = &titles[i]
		}
	}
	require.NotNil(t, leading)
	assert.NotContains(t, leading.Issues, "Keywords appear late in the title")
}

func TestGenerateTitles_RankedCandidates(t *testing.T) {
	g := newTestGenerator(t, nil)
	components := types.ProductTitleComponents{
		Category:    "휴대폰 액세서리",
		Demographic: "남녀공용",
		Keywords:    []string{"스마트폰", "케이스"},
		Features:    []string{"투명", "방탄"},
		Usage:       "선물용",
	}

	titles, err := g.GenerateTitles(components, testCatalog())
	require.NoError(t, err)

	// five slot layouts plus two pair re-orderings
	require.Len(t, titles, 7)

	texts := make([]string, 0, len(titles))
	for i, title := range titles {
		texts = append(texts, title.TitleText)
		assert.NotEmpty(t, title.ID)
		assert.Equal(t, []string{"kw-case", "kw-phone"}, title.KeywordIDs)
		assert.Equal(t, components, title.Components)
		assert.GreaterOrEqual(t, title.Score, 0.0)
		assert.LessOrEqual(t, title.Score, 100.0)
		require.NotNil(t, title.SpacingVariants)
		assert.Equal(t, title.TitleText, title.SpacingVariants.Spaced)
		assert.NotNil(t, title.Issues)
		if i > 0 {
			assert.GreaterOrEqual(t, titles[i-1].Score, title.Score)
		}
	}

	// higher-scored keyword leads the keyword phrase
	assert.Contains(t, texts, "케이스 스마트폰 휴대폰 액세서리 남녀공용 투명 방탄 선물용")
	assert.Contains(t, texts, "스마트폰 케이스 휴대폰 액세서리 투명 방탄")
}

func TestGenerateTitles_CaseInsensitiveLookupAndUnscoredLast(t *testing.T) {
	g := newTestGenerator(t, nil)

	titles, err := g.GenerateTitles(types.ProductTitleComponents{Keywords: []string{"galaxy", "투명"}}, testCatalog())
	require.NoError(t, err)
	require.NotEmpty(t, titles)

	for _, title := range titles {
		assert.Equal(t, []string{"kw-clear", "kw-galaxy"}, title.KeywordIDs)
	}

	texts := make([]string, 0, len(titles))
	for _, title := range titles {
		texts = append(texts, title.TitleText)
	}
	assert.Contains(t, texts, "투명 Galaxy")
	assert.Contains(t, texts, "Galaxy 투명")
}

func TestGenerateTitles_LengthIssueForOverlongTitles(t *testing.T) {
	g := newTestGenerator(t, func(c *Config) { c.MaxLength = 12 })
	components := types.ProductTitleComponents{
		Category: "휴대폰 액세서리",
		Keywords: []string{"스마트폰", "케이스", "투명"},
		Features: []string{"충격흡수", "슬림핏"},
	}

	titles, err := g.GenerateTitles(components, testCatalog())
	require.NoError(t, err)
	require.NotEmpty(t, titles)
	assert.LessOrEqual(t, len(titles), MaxResults)

	for _, title := range titles {
		if utf8.RuneCountInString(title.TitleText) <= 12 {
			continue
		}
		found := false
		for _, issue := range title.Issues {
			if strings.Contains(issue, "exceeding the maximum of 12") {
				found = true
			}
		}
		assert.True(t, found, "missing length issue for %q", title.TitleText)
	}
}

func TestGenerateTitles_StopwordsAndDuplicates(t *testing.T) {
	g := newTestGenerator(t, func(c *Config) { c.Stopwords = []string{"방탄"} })
	components := types.ProductTitleComponents{
		Category: "케이스",
		Keywords: []string{"케이스"},
		Features: []string{"방탄소재"},
	}

	titles, err := g.GenerateTitles(components, testCatalog())
	require.NoError(t, err)
	require.NotEmpty(t, titles)

	for _, title := range titles {
		assert.NotContains(t, title.TitleText, "방탄")
		assert.Equal(t, "케이스", title.TitleText)
		assert.Contains(t, title.Issues, "Removed stopwords: 방탄소재")
		assert.Contains(t, title.Issues, "Removed duplicate words: 케이스")
	}
}

func TestGenerateTitles_EverythingStoppedYieldsNoTitles(t *testing.T) {
	g := newTestGenerator(t, func(c *Config) { c.Stopwords = []string{"스마트"} })

	titles, err := g.GenerateTitles(types.ProductTitleComponents{Keywords: []string{"스마트폰"}}, testCatalog())
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestGenerateTitles_SpacingVariantsDisabled(t *testing.T) {
	g := newTestGenerator(t, func(c *Config) { c.GenerateSpacingVariants = false })

	titles, err := g.GenerateTitles(types.ProductTitleComponents{Keywords: []string{"케이스"}}, testCatalog())
	require.NoError(t, err)
	require.Len(t, titles, 1)
	assert.Nil(t, titles[0].SpacingVariants)
}

func TestKeywordCombinations(t *testing.T) {
	combos := keywordCombinations([]string{"a", "b", "c"})
	assert.Equal(t, [][]string{
		{"a", "b"}, {"a", "c"}, {"b", "a"}, {"b", "c"}, {"c", "a"}, {"c", "b"},
		{"a", "b", "c"},
	}, combos)
}

func TestBuildCandidates_DropsEmptyAndRepeated(t *testing.T) {
	got := buildCandidates([]string{"셔츠"}, types.ProductTitleComponents{})
	assert.Equal(t, []string{"셔츠"}, got)

	got = buildCandidates([]string{"셔츠"}, types.ProductTitleComponents{Category: "남성의류"})
	assert.Equal(t, []string{"셔츠 남성의류", "남성의류 셔츠"}, got)
}
