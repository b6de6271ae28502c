package scoring

import (
	"math"
	"testing"

	"github.com/jonathan/listing-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer(t *testing.T, weights types.AlgorithmWeights) *Scorer {
	t.Helper()
	s, err := NewScorer(weights)
	require.NoError(t, err)
	return s
}

func TestNewScorer_RejectsNegativeWeights(t *testing.T) {
	_, err := NewScorer(types.AlgorithmWeights{Volume: -1, Competition: 0.3, Tag: 0.1})
	require.Error(t, err)
	_, ok := types.AsValidationError(err)
	assert.True(t, ok)
}

func TestCalculateScores_ScenarioSnapshot(t *testing.T) {
	s := newTestScorer(t, types.AlgorithmWeights{Volume: 0.7, Competition: 0.3, Tag: 0.1})
	keywords := []types.Keyword{
		{ID: "k1", Term: "스마트폰", Volume: 10000, Competition: 85},
		{ID: "k2", Term: "케이스", Volume: 500, Competition: 20},
	}

	scored := s.CalculateScores(keywords)
	require.Len(t, scored, 2)

	// Volume is relative to the batch: the smaller keyword normalizes to 0 and
	// the competition penalty on the larger one does not outweigh its demand.
	assert.Equal(t, 55.78, scored[0].ScoreValue())
	assert.Equal(t, 0.0, scored[1].ScoreValue())
}

func TestCalculateScores_DoesNotMutateInput(t *testing.T) {
	s := newTestScorer(t, types.DefaultAlgorithmWeights())
	keywords := []types.Keyword{{Term: "a", Volume: 10}, {Term: "b", Volume: 1000}}

	_ = s.CalculateScores(keywords)

	assert.Nil(t, keywords[0].Score)
	assert.Nil(t, keywords[1].Score)
}

func TestScoreMissing_KeepsGivenScores(t *testing.T) {
	s := newTestScorer(t, types.DefaultAlgorithmWeights())
	keywords := []types.Keyword{
		{Term: "셔츠", Volume: 100, Competition: 50, Score: types.Float64Ptr(95)},
		{Term: "린넨", Volume: 1000, Competition: 10},
	}

	scored := s.ScoreMissing(keywords)
	require.Len(t, scored, 2)
	assert.Equal(t, 95.0, scored[0].ScoreValue())

	// Unscored keywords are scored against the whole batch.
	full := s.CalculateScores(keywords)
	require.NotNil(t, scored[1].Score)
	assert.Equal(t, full[1].ScoreValue(), scored[1].ScoreValue())
	assert.Nil(t, keywords[1].Score)
}

func TestCalculateScores_Idempotent(t *testing.T) {
	s := newTestScorer(t, types.DefaultAlgorithmWeights())
	keywords := []types.Keyword{
		{Term: "텀블러", Volume: 12000, Competition: 70, Tags: []types.KeywordTag{types.TagTrending}},
		{Term: "스텐 텀블러 500ml", Volume: 800, Competition: 15, Tags: []types.KeywordTag{types.TagLongtail, types.TagFeature}},
		{Term: "캠핑 텀블러", Volume: 3000, Competition: 40, Weight: types.Float64Ptr(0.4)},
	}

	first := s.CalculateScores(keywords)
	second := s.CalculateScores(first)

	for i := range first {
		assert.Equal(t, first[i].ScoreValue(), second[i].ScoreValue())
	}
}

func TestCalculateScore_Bounds(t *testing.T) {
	ctr := 5.0
	s := newTestScorer(t, types.AlgorithmWeights{Volume: 3, Competition: 0, Tag: 3, CTR: &ctr})
	keywords := []types.Keyword{
		{Term: "max", Volume: 1_000_000, Competition: 0, Weight: types.Float64Ptr(1), Tags: []types.KeywordTag{types.TagTrending, types.TagBrand, types.TagLongtail}},
		{Term: "min", Volume: 0, Competition: 100},
		{Term: "mid", Volume: 500, Competition: 50},
	}
	stats := CalculateGroupStats(keywords)

	for _, k := range keywords {
		result := s.CalculateScore(k, &stats)
		assert.GreaterOrEqual(t, result.Score, 0.0, k.Term)
		assert.LessOrEqual(t, result.Score, 100.0, k.Term)
	}
	assert.Equal(t, 100.0, s.CalculateScore(keywords[0], &stats).Score)
}

func TestCalculateScore_SingleKeywordBatchIsMidRange(t *testing.T) {
	s := newTestScorer(t, types.DefaultAlgorithmWeights())

	result := s.CalculateScore(types.Keyword{Term: "solo", Volume: 4200, Competition: 30}, nil)
	assert.Equal(t, 0.5, result.NormalizedVolume)

	stats := CalculateGroupStats([]types.Keyword{{Term: "solo", Volume: 4200}})
	assert.Equal(t, 0.5, NormalizeVolume(4200, stats))
}

func TestCalculateScore_CTRBonusRequiresBothSides(t *testing.T) {
	ctr := 0.5
	withCTR := newTestScorer(t, types.AlgorithmWeights{Volume: 0.6, Competition: 0.4, Tag: 0.2, CTR: &ctr})
	withoutCTR := newTestScorer(t, types.AlgorithmWeights{Volume: 0.6, Competition: 0.4, Tag: 0.2})

	k := types.Keyword{Term: "a", Volume: 100, Competition: 10, Weight: types.Float64Ptr(0.8)}

	assert.InDelta(t, 0.4, withCTR.CalculateScore(k, nil).Breakdown.CTRContribution, 1e-9)
	assert.Zero(t, withoutCTR.CalculateScore(k, nil).Breakdown.CTRContribution)

	k.Weight = nil
	assert.Zero(t, withCTR.CalculateScore(k, nil).Breakdown.CTRContribution)
}

func TestCalculateScore_CompetitionPenalizesMultiplicatively(t *testing.T) {
	s := newTestScorer(t, types.AlgorithmWeights{Volume: 1, Competition: 1, Tag: 0})
	stats := types.KeywordGroupStats{MinVolume: 0, MaxVolume: 1000, Count: 2}

	easy := s.CalculateScore(types.Keyword{Term: "easy", Volume: 1000, Competition: 0}, &stats)
	hard := s.CalculateScore(types.Keyword{Term: "hard", Volume: 1000, Competition: 100}, &stats)

	assert.Equal(t, 100.0, easy.Score)
	assert.Equal(t, 50.0, hard.Score)
	assert.Equal(t, 2.0, hard.Breakdown.CompetitionDivisor)
}

func TestNormalizeVolume_Monotonic(t *testing.T) {
	stats := types.KeywordGroupStats{MinVolume: 10, MaxVolume: 100_000}
	prev := -1.0
	for _, v := range []int{0, 10, 11, 50, 999, 5000, 99_999, 100_000, 500_000} {
		nv := NormalizeVolume(v, stats)
		assert.GreaterOrEqual(t, nv, prev, "volume %d", v)
		assert.GreaterOrEqual(t, nv, 0.0)
		assert.LessOrEqual(t, nv, 1.0)
		prev = nv
	}
}

func TestNormalizeVolume_LogScale(t *testing.T) {
	stats := types.KeywordGroupStats{MinVolume: 0, MaxVolume: 99}
	// ln(10)/ln(100) = 0.5
	assert.InDelta(t, 0.5, NormalizeVolume(9, stats), 1e-9)
}

func TestTagWeight(t *testing.T) {
	tests := []struct {
		name string
		tags []types.KeywordTag
		want float64
	}{
		{"no tags", nil, 0},
		{"single trending", []types.KeywordTag{types.TagTrending}, 0.8 + 0.2/3},
		{"three tags", []types.KeywordTag{types.TagTrending, types.TagBrand, types.TagLongtail}, 0.9},
		{"four tags caps bonus", []types.KeywordTag{types.TagTrending, types.TagBrand, types.TagLongtail, types.TagCategory}, 0.85},
		{"duplicates count once", []types.KeywordTag{types.TagCustom, types.TagCustom}, 0.2 + 0.2/3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TagWeight(tt.tags)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestNormalizeCompetition(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeCompetition(0))
	assert.Equal(t, 0.85, NormalizeCompetition(85))
	assert.Equal(t, 1.0, NormalizeCompetition(100))
}

func TestClamp_NaN(t *testing.T) {
	assert.Equal(t, 0.0, clamp(math.NaN(), 0, 100))
}
