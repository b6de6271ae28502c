// Package scoring computes keyword opportunity scores from search volume, competition and tags.
package scoring

import (
	"github.com/jonathan/listing-optimizer/internal/types"
)

// defaultGroupStats is returned for an empty batch so normalization never divides by zero.
func defaultGroupStats() types.KeywordGroupStats {
	return types.KeywordGroupStats{
		MinVolume:      0,
		MaxVolume:      1,
		AvgVolume:      0,
		MinCompetition: 0,
		MaxCompetition: 1,
		AvgCompetition: 0,
		Count:          0,
	}
}

// CalculateGroupStats aggregates volume and competition over a keyword batch.
func CalculateGroupStats(keywords []types.Keyword) types.KeywordGroupStats {
	if len(keywords) == 0 {
		return defaultGroupStats()
	}

	stats := types.KeywordGroupStats{
		MinVolume:      keywords[0].Volume,
		MaxVolume:      keywords[0].Volume,
		MinCompetition: keywords[0].Competition,
		MaxCompetition: keywords[0].Competition,
		Count:          len(keywords),
	}

	totalVolume := 0.0
	totalCompetition := 0.0
	for _, k := range keywords {
		stats.MinVolume = min(stats.MinVolume, k.Volume)
		stats.MaxVolume = max(stats.MaxVolume, k.Volume)
		stats.MinCompetition = min(stats.MinCompetition, k.Competition)
		stats.MaxCompetition = max(stats.MaxCompetition, k.Competition)
		totalVolume += float64(k.Volume)
		totalCompetition += k.Competition
	}

	stats.AvgVolume = totalVolume / float64(len(keywords))
	stats.AvgCompetition = totalCompetition / float64(len(keywords))

	return stats
}
