package titles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengthScore(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   float64
	}{
		{"inside ideal band", 40, 1},
		{"band lower edge", 30, 1},
		{"band upper edge", 45, 1},
		{"half of lower edge", 15, 0.5},
		{"empty", 0, 0},
		{"between band and limit", 48, 0.82},
		{"at limit", 50, 0.7},
		{"over limit", 51, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, lengthScore(tt.length, 50), 1e-9)
		})
	}
}

func TestReadabilityScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"clean title", "갤럭시 S24 울트라 투명 젤리 케이스", 1.0},
		{"too short", "스마트폰 케이스", 0.7},
		{"single word", "스마트폰케이스투명젤리", 0.8},
		{"too many symbols", "!!!! 특가 ★★", 0.8},
		{"all caps run", "NEW 케이스 정품 상품입니다", 0.9},
		{"everything wrong", "!!!!!", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, readabilityScore(tt.text), 1e-9)
		})
	}
}

func TestUniquenessScore(t *testing.T) {
	assert.InDelta(t, 1.0, uniquenessScore("린넨 여름 원피스"), 1e-9)
	assert.InDelta(t, 0.7, uniquenessScore("최고 할인 특가 케이스"), 1e-9)
	assert.InDelta(t, 0.8, uniquenessScore("최고최고 셔츠"), 1e-9)
	assert.InDelta(t, 0.9, uniquenessScore("모델 1234567"), 1e-9)
	assert.InDelta(t, 0.9, uniquenessScore("BEST 셔츠"), 1e-9)
	assert.Equal(t, 0.0, uniquenessScore("최고 최고 최고 최고 최고 최고 최고 최고 최고 최고 최고 할인 123456"))
}

func TestKeywordPlacementScore(t *testing.T) {
	title := "스마트폰 케이스 투명"

	assert.InDelta(t, (1+6.0/11)/2, keywordPlacementScore(title, []string{"스마트폰", "케이스"}), 1e-9)
	assert.InDelta(t, 0.5, keywordPlacementScore(title, []string{"없음"}), 1e-9)
	assert.InDelta(t, 0.5, keywordPlacementScore("", nil), 1e-9)

	// without keywords the first three title tokens are used
	assert.InDelta(t, 19.0/33, keywordPlacementScore(title, nil), 1e-9)

	// only the first three keywords are considered
	assert.InDelta(t, 1.0, keywordPlacementScore(title, []string{"스마트폰", "a", "b", "투명"}), 1e-9)
}

func TestKeywordPlacementScore_SpacedKeyword(t *testing.T) {
	title := "아이폰15 케이스 휴대폰 액세서리"

	assert.InDelta(t, 1.0, keywordPlacementScore(title, []string{"아이폰15케이스"}), 1e-9)
	assert.InDelta(t, 1.0, keywordPlacementScore(title, []string{"아이폰15 케이스"}), 1e-9)
}

func TestEvaluateTitle(t *testing.T) {
	q := EvaluateTitle("갤럭시 S24 울트라 투명 젤리 케이스 정품 충격흡수", 50, []string{"갤럭시"})

	assert.InDelta(t, 1.0, q.KeywordPlacement, 1e-9)
	assert.InDelta(t, 1.0, q.Readability, 1e-9)
	assert.InDelta(t, 1.0, q.Uniqueness, 1e-9)

	avg := (q.KeywordPlacement + q.Readability + q.Length + q.Uniqueness) / 4
	assert.Equal(t, math.Round(avg*10000)/100, q.Overall)
	assert.GreaterOrEqual(t, q.Overall, 0.0)
	assert.LessOrEqual(t, q.Overall, 100.0)
}

func TestEvaluateTitle_IssuesFromThresholds(t *testing.T) {
	q := EvaluateTitle("최고 할인 특가 폰", 50, []string{"폰"})

	assert.Contains(t, q.Issues, "Keywords appear late in the title")
	assert.Contains(t, q.Issues, "Title length is outside the ideal range")
	assert.Contains(t, q.Issues, "Title relies on generic marketing phrases")
	assert.Contains(t, q.Suggestions, "Aim for 30-45 characters")
	assert.Len(t, q.Suggestions, len(q.Issues))
}

func TestGenerator_EvaluateTitleUsesConfiguredMaxLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLength = 10
	g, err := NewGenerator(cfg)
	if !assert.NoError(t, err) {
		return
	}

	q := g.EvaluateTitle("갤럭시 S24 울트라 투명 젤리 케이스")
	assert.Equal(t, 0.0, q.Length)
}
