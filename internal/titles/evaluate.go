package titles

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	idealLowRatio  = 0.6
	idealHighRatio = 0.9
	// overLengthPenalty is the largest deduction inside the (90%, 100%] band.
	overLengthPenalty = 0.3

	placementIssueThreshold   = 0.7
	readabilityIssueThreshold = 0.7
	lengthIssueThreshold      = 0.8
	uniquenessIssueThreshold  = 0.8

	// defaultPlacementScore applies when no keyword can be located in the title.
	defaultPlacementScore = 0.5
	placementTokenLimit   = 3
)

// genericPhrases are marketing words that make a title indistinguishable from competitors.
var genericPhrases = []string{
	"최고", "할인", "특가", "최저가", "무료배송", "대박", "인기", "추천", "베스트",
	"best", "sale", "hot",
}

var upperRun = regexp.MustCompile(`[A-Z]{3,}`)

// Quality is the breakdown of a title's score. Sub-scores are in [0,1]; Overall is in [0,100].
type Quality struct {
	Overall          float64  `json:"overall"`
	KeywordPlacement float64  `json:"keyword_placement"`
	Readability      float64  `json:"readability"`
	Length           float64  `json:"length"`
	Uniqueness       float64  `json:"uniqueness"`
	Issues           []string `json:"issues"`
	Suggestions      []string `json:"suggestions"`
}

// EvaluateTitle scores a title with the generator's length limit.
// Keywords are the terms whose placement is judged; when empty the first title tokens are used.
func (g *Generator) EvaluateTitle(text string, keywords ...string) Quality {
	return EvaluateTitle(text, g.cfg.MaxLength, keywords)
}

// EvaluateTitle scores a title on keyword placement, readability, length and uniqueness,
// weighting the four equally.
func EvaluateTitle(text string, maxLength int, keywords []string) Quality {
	text = norm.NFC.String(text)

	q := Quality{
		KeywordPlacement: keywordPlacementScore(text, keywords),
		Readability:      readabilityScore(text),
		Length:           lengthScore(utf8.RuneCountInString(text), maxLength),
		Uniqueness:       uniquenessScore(text),
		Issues:           []string{},
		Suggestions:      []string{},
	}
	avg := (q.KeywordPlacement + q.Readability + q.Length + q.Uniqueness) / 4
	q.Overall = math.Round(avg*10000) / 100

	if q.KeywordPlacement < placementIssueThreshold {
		q.Issues = append(q.Issues, "Keywords appear late in the title")
		q.Suggestions = append(q.Suggestions, "Move the most important keyword to the front")
	}
	if q.Readability < readabilityIssueThreshold {
		q.Issues = append(q.Issues, "Title is hard to read")
		q.Suggestions = append(q.Suggestions, "Use 2-12 words, fewer symbols and no all-caps runs")
	}
	if q.Length < lengthIssueThreshold {
		lo, hi := int(float64(maxLength)*idealLowRatio), int(float64(maxLength)*idealHighRatio)
		q.Issues = append(q.Issues, "Title length is outside the ideal range")
		q.Suggestions = append(q.Suggestions, fmt.Sprintf("Aim for %d-%d characters", lo, hi))
	}
	if q.Uniqueness < uniquenessIssueThreshold {
		q.Issues = append(q.Issues, "Title relies on generic marketing phrases")
		q.Suggestions = append(q.Suggestions, "Replace generic phrases with concrete product attributes")
	}

	return q
}

// keywordPlacementScore rewards keywords found near the start of the title.
// Each of the first three keywords found scores 1 - position/length; the result is their mean.
// A keyword matches as written or in its spaced form.
func keywordPlacementScore(text string, keywords []string) float64 {
	lower := strings.ToLower(text)
	total := utf8.RuneCountInString(lower)
	if total == 0 {
		return defaultPlacementScore
	}

	candidates := keywords
	if len(candidates) == 0 {
		candidates = strings.Fields(text)
	}

	sum := 0.0
	matched := 0
	considered := 0
	for _, kw := range candidates {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if considered == placementTokenLimit {
			break
		}
		considered++

		idx := strings.Index(lower, kw)
		if idx < 0 {
			// Titles are spaced at script boundaries, so "아이폰15케이스" appears as "아이폰15 케이스".
			idx = strings.Index(lower, strings.ToLower(NormalizeSpacing(kw)))
		}
		if idx < 0 {
			continue
		}
		pos := utf8.RuneCountInString(lower[:idx])
		sum += 1 - float64(pos)/float64(total)
		matched++
	}

	if matched == 0 {
		return defaultPlacementScore
	}
	return sum / float64(matched)
}

func readabilityScore(text string) float64 {
	score := 1.0

	if n := utf8.RuneCountInString(text); n < 10 || n > 80 {
		score -= 0.3
	}
	if words := len(strings.Fields(text)); words < 2 || words > 12 {
		score -= 0.2
	}

	specials := 0
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			specials++
		}
	}
	if specials > 3 {
		score -= 0.2
	}

	if upperRun.MatchString(text) {
		score -= 0.1
	}

	return math.Max(0, score)
}

// lengthScore is 1 inside 60-90% of maxLength, falls off proportionally below the band,
// loses up to 0.3 linearly between 90% and the limit, and is 0 past the limit.
func lengthScore(length, maxLength int) float64 {
	if maxLength <= 0 || length > maxLength {
		return 0
	}

	low := float64(maxLength) * idealLowRatio
	high := float64(maxLength) * idealHighRatio
	l := float64(length)

	switch {
	case l < low:
		return l / low
	case l > high:
		return 1 - overLengthPenalty*(l-high)/(float64(maxLength)-high)
	default:
		return 1
	}
}

func uniquenessScore(text string) float64 {
	score := 1.0
	lower := strings.ToLower(text)

	for _, phrase := range genericPhrases {
		score -= 0.1 * float64(strings.Count(lower, phrase))
	}

	digits := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits > 5 {
		score -= 0.1
	}

	return math.Max(0, score)
}
