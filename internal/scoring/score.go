package scoring

import (
	"math"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// Base weight of each tag before the multi-tag bonus.
var tagBaseWeights = map[types.KeywordTag]float64{
	types.TagTrending: 0.8,
	types.TagBrand:    0.7,
	types.TagLongtail: 0.6,
	types.TagCategory: 0.5,
	types.TagSeasonal: 0.4,
	types.TagFeature:  0.4,
	types.TagEvent:    0.3,
	types.TagCustom:   0.2,
}

const (
	// multiTagBonus is the largest bonus for carrying several tags, reached at three tags.
	multiTagBonus = 0.2
	multiTagCount = 3.0
)

// Breakdown shows how each input contributed to the raw score.
type Breakdown struct {
	VolumeContribution float64 `json:"volume_contribution"`
	TagContribution    float64 `json:"tag_contribution"`
	CTRContribution    float64 `json:"ctr_contribution"`
	CompetitionDivisor float64 `json:"competition_divisor"`
	RawScore           float64 `json:"raw_score"`
}

// Result is the scored view of one keyword.
type Result struct {
	Score                 float64   `json:"score"`
	NormalizedVolume      float64   `json:"normalized_volume"`
	NormalizedCompetition float64   `json:"normalized_competition"`
	TagWeight             float64   `json:"tag_weight"`
	Breakdown             Breakdown `json:"breakdown"`
	Explanation           string    `json:"explanation"`
}

// Scorer computes opportunity scores with a fixed set of weights.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	weights types.AlgorithmWeights
}

// NewScorer validates the weights and returns a scorer using them.
func NewScorer(weights types.AlgorithmWeights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights}, nil
}

// Weights returns the scorer's weights.
func (s *Scorer) Weights() types.AlgorithmWeights {
	return s.weights
}

// CalculateScore scores one keyword against group statistics.
// When stats is nil the keyword is scored as a batch of one.
func (s *Scorer) CalculateScore(keyword types.Keyword, stats *types.KeywordGroupStats) Result {
	if stats == nil {
		single := CalculateGroupStats([]types.Keyword{keyword})
		stats = &single
	}

	normVolume := NormalizeVolume(keyword.Volume, *stats)
	normCompetition := NormalizeCompetition(keyword.Competition)
	tagWeight := TagWeight(keyword.Tags)

	volumePart := normVolume * s.weights.Volume
	tagPart := tagWeight * s.weights.Tag
	ctrPart := 0.0
	if keyword.Weight != nil && s.weights.CTR != nil {
		ctrPart = *keyword.Weight * *s.weights.CTR
	}
	divisor := normCompetition*s.weights.Competition + 1

	raw := (volumePart + tagPart + ctrPart) / divisor
	score := round2(clamp(raw*100, 0, 100))

	return Result{
		Score:                 score,
		NormalizedVolume:      normVolume,
		NormalizedCompetition: normCompetition,
		TagWeight:             tagWeight,
		Breakdown: Breakdown{
			VolumeContribution: volumePart,
			TagContribution:    tagPart,
			CTRContribution:    ctrPart,
			CompetitionDivisor: divisor,
			RawScore:           raw,
		},
		Explanation: Explain(normVolume, normCompetition, tagWeight),
	}
}

// CalculateScores scores a batch against its own statistics.
// The input is left untouched; the returned copies carry the score.
func (s *Scorer) CalculateScores(keywords []types.Keyword) []types.Keyword {
	stats := CalculateGroupStats(keywords)
	scored := make([]types.Keyword, len(keywords))
	for i, k := range keywords {
		result := s.CalculateScore(k, &stats)
		k.Score = types.Float64Ptr(result.Score)
		scored[i] = k
	}
	return scored
}

// ScoreMissing scores only the keywords that carry no score yet, against the statistics of the
// whole batch. Scores already present are kept as given.
func (s *Scorer) ScoreMissing(keywords []types.Keyword) []types.Keyword {
	stats := CalculateGroupStats(keywords)
	scored := make([]types.Keyword, len(keywords))
	for i, k := range keywords {
		if k.Score == nil {
			k.Score = types.Float64Ptr(s.CalculateScore(k, &stats).Score)
		}
		scored[i] = k
	}
	return scored
}

// NormalizeVolume maps volume onto [0,1] on a log scale relative to the group.
// A group with a single distinct volume yields 0.5.
func NormalizeVolume(volume int, stats types.KeywordGroupStats) float64 {
	if stats.MaxVolume == stats.MinVolume {
		return 0.5
	}
	logMin := math.Log(float64(stats.MinVolume) + 1)
	logMax := math.Log(float64(stats.MaxVolume) + 1)
	v := (math.Log(float64(max(volume, 0))+1) - logMin) / (logMax - logMin)
	return clamp(v, 0, 1)
}

// NormalizeCompetition maps competition from [0,100] onto [0,1].
func NormalizeCompetition(competition float64) float64 {
	return clamp(competition/100, 0, 1)
}

// TagWeight averages the base weights of the tags and adds a bonus for carrying several, capped at 1.
func TagWeight(tags []types.KeywordTag) float64 {
	tags = types.NormalizeTags(tags)
	if len(tags) == 0 {
		return 0
	}

	total := 0.0
	for _, tag := range tags {
		total += tagBaseWeights[tag]
	}
	avg := total / float64(len(tags))
	bonus := math.Min(float64(len(tags))/multiTagCount, 1) * multiTagBonus

	return math.Min(avg+bonus, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
