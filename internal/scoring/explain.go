package scoring

import "strings"

// Explain describes the three normalized sub-scores in plain words.
func Explain(normVolume, normCompetition, tagWeight float64) string {
	var parts []string

	switch {
	case normVolume >= 0.7:
		parts = append(parts, "High search volume")
	case normVolume >= 0.4:
		parts = append(parts, "Moderate search volume")
	default:
		parts = append(parts, "Low search volume")
	}

	switch {
	case normCompetition <= 0.3:
		parts = append(parts, "low competition")
	case normCompetition <= 0.6:
		parts = append(parts, "moderate competition")
	default:
		parts = append(parts, "high competition")
	}

	if tagWeight >= 0.6 {
		parts = append(parts, "strong tag signals")
	} else if tagWeight > 0 {
		parts = append(parts, "some tag signals")
	}

	return strings.Join(parts, ", ")
}
