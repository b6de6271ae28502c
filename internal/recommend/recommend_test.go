package recommend

import (
	"testing"

	"github.com/jonathan/listing-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kw(term string, score float64, tags ...types.KeywordTag) types.Keyword {
	return types.Keyword{ID: term, Term: term, Score: types.Float64Ptr(score), Tags: tags}
}

func terms(keywords []types.Keyword) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, k.Term)
	}
	return out
}

func TestRecommend_HighScoresAlwaysAdmitted(t *testing.T) {
	keywords := []types.Keyword{
		kw("a", 95, types.TagBrand),
		kw("b", 90, types.TagBrand),
		kw("c", 85, types.TagBrand),
	}

	got, err := Recommend(keywords, Options{Count: 3, DiversityFactor: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, terms(got))
}

func TestRecommend_PrefersNewTags(t *testing.T) {
	keywords := []types.Keyword{
		kw("brand-1", 70, types.TagBrand),
		kw("brand-2", 65, types.TagBrand),
		kw("trend", 60, types.TagTrending),
		kw("brand-3", 55, types.TagBrand),
		kw("season", 40, types.TagSeasonal, types.TagBrand),
	}

	got, err := Recommend(keywords, Options{Count: 3, DiversityFactor: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"brand-1", "trend", "season"}, terms(got))
}

func TestRecommend_RandomTieBreakIsInjectable(t *testing.T) {
	keywords := []types.Keyword{
		kw("brand-1", 70, types.TagBrand),
		kw("brand-2", 65, types.TagBrand),
		kw("brand-3", 60, types.TagBrand),
	}

	// first duplicate draw rejects, second admits
	got, err := Recommend(keywords, Options{Count: 2, DiversityFactor: 0.5, Random: NewSequenceSource(0.1, 0.9)})
	require.NoError(t, err)
	assert.Equal(t, []string{"brand-1", "brand-3"}, terms(got))
}

func TestRecommend_ZeroDiversityAdmitsEverything(t *testing.T) {
	keywords := []types.Keyword{kw("a", 10), kw("b", 20), kw("c", 30)}

	got, err := Recommend(keywords, Options{Count: 5, DiversityFactor: 0, Random: NewSequenceSource()})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, terms(got))
}

func TestRecommend_SeededSourceIsReproducible(t *testing.T) {
	keywords := make([]types.Keyword, 0, 20)
	for i := 0; i < 20; i++ {
		keywords = append(keywords, kw(string(rune('a'+i)), float64(50-i), types.TagBrand))
	}

	first, err := Recommend(keywords, Options{Count: 8, DiversityFactor: 0.5, Random: NewSeededSource(42)})
	require.NoError(t, err)
	second, err := Recommend(keywords, Options{Count: 8, DiversityFactor: 0.5, Random: NewSeededSource(42)})
	require.NoError(t, err)

	assert.Equal(t, terms(first), terms(second))
}

func TestRecommend_UnscoredRankLast(t *testing.T) {
	keywords := []types.Keyword{
		{Term: "unscored", Tags: []types.KeywordTag{types.TagEvent}},
		kw("scored", 12, types.TagCustom),
	}

	got, err := Recommend(keywords, Options{Count: 2, DiversityFactor: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"scored", "unscored"}, terms(got))
}

func TestRecommend_InvalidOptions(t *testing.T) {
	_, err := Recommend(nil, Options{Count: -1, DiversityFactor: 2})
	require.Error(t, err)

	ve, ok := types.AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Violations, 2)

	_, err = Recommend(nil, Options{Count: 1, DiversityFactor: 0.3})
	require.Error(t, err)
}

func TestDescribe(t *testing.T) {
	got := Describe([]types.Keyword{kw("a", 1, types.TagBrand), kw("b", 1, types.TagBrand, types.TagEvent)})
	assert.Equal(t, "2 keywords covering 2 distinct tags", got)
}

func TestSequenceSource_Cycles(t *testing.T) {
	s := NewSequenceSource(0.1, 0.2)
	assert.Equal(t, []float64{0.1, 0.2, 0.1}, []float64{s.Next(), s.Next(), s.Next()})
}

func TestSeededSource_Range(t *testing.T) {
	s := NewSeededSource(7)
	for i := 0; i < 100; i++ {
		v := s.Next()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
