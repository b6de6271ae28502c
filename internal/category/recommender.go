package category

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// DefaultMaxSuggestions is used when RecommendCategories is called with a non-positive limit.
const DefaultMaxSuggestions = 3

const (
	keywordScoreWeight   = 0.4
	patternScoreWeight   = 0.3
	frequencyScoreWeight = 0.3
	// frequencyScoreFloor is the keyword score a term must exceed to count toward frequency.
	frequencyScoreFloor = 70.0
)

// PatternMatchReason is appended to a suggestion's reasons when any rule pattern matched.
const PatternMatchReason = "Matched product naming patterns"

// ScoreBreakdown holds the per-rule component scores.
type ScoreBreakdown struct {
	KeywordScore   float64 `json:"keyword_score"`
	PatternScore   float64 `json:"pattern_score"`
	FrequencyScore float64 `json:"frequency_score"`
	FinalScore     float64 `json:"final_score"`
}

// Match is a ranked category suggestion together with the evidence behind it.
type Match struct {
	Suggestion     types.CategorySuggestion `json:"suggestion"`
	MatchedRules   []string                 `json:"matched_rules"`
	KeywordMatches []string                 `json:"keyword_matches"`
	PatternMatches []string                 `json:"pattern_matches"`
	ScoreBreakdown ScoreBreakdown           `json:"score_breakdown"`
}

type compiledRule struct {
	rule     types.CategoryRule
	patterns []*regexp.Regexp
}

// Recommender matches keywords against a rule table. The table is safe for concurrent use;
// rule names are unique case-insensitively and a later AddRule replaces an earlier one.
type Recommender struct {
	mu    sync.RWMutex
	rules []compiledRule
	index map[string]int
}

// NewRecommender builds a recommender over rules. Every rule is validated and its patterns compiled.
func NewRecommender(rules []types.CategoryRule) (*Recommender, error) {
	r := &Recommender{index: make(map[string]int, len(rules))}
	for _, rule := range rules {
		if err := r.AddRule(rule); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewDefaultRecommender builds a recommender over the embedded seed rules.
func NewDefaultRecommender() (*Recommender, error) {
	rules, err := SeedRules()
	if err != nil {
		return nil, err
	}
	return NewRecommender(rules)
}

// AddRule inserts rule, replacing any rule with the same category name in place.
func (r *Recommender) AddRule(rule types.CategoryRule) error {
	compiled, err := compileRule(rule)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := ruleKey(rule.CategoryName)
	if i, ok := r.index[key]; ok {
		r.rules[i] = compiled
		return nil
	}
	r.index[key] = len(r.rules)
	r.rules = append(r.rules, compiled)
	return nil
}

// RemoveRule deletes the rule for name and reports whether one existed.
func (r *Recommender) RemoveRule(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ruleKey(name)
	i, ok := r.index[key]
	if !ok {
		return false
	}
	r.rules = slices.Delete(r.rules, i, i+1)
	delete(r.index, key)
	for j := i; j < len(r.rules); j++ {
		r.index[ruleKey(r.rules[j].rule.CategoryName)] = j
	}
	return true
}

// Rules returns a copy of the rule table in insertion order.
func (r *Recommender) Rules() []types.CategoryRule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.CategoryRule, len(r.rules))
	for i, c := range r.rules {
		out[i] = cloneRule(c.rule)
	}
	return out
}

// SearchCategories returns rules whose name, keywords or reason contain query, ignoring case.
// An empty query returns every rule.
func (r *Recommender) SearchCategories(query string) []types.CategoryRule {
	q := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []types.CategoryRule{}
	for _, c := range r.rules {
		if q == "" || ruleMentions(c.rule, q) {
			out = append(out, cloneRule(c.rule))
		}
	}
	return out
}

// CategoryChecklist returns the attributes a category requires.
func (r *Recommender) CategoryChecklist(name string) ([]types.CategoryAttribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[ruleKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}
	return slices.Clone(r.rules[i].rule.Attributes), nil
}

// RecommendCategories ranks the rules that match the keyword terms and optional title components.
// Rules with a zero final score are left out.
func (r *Recommender) RecommendCategories(keywords []types.Keyword, components *types.ProductTitleComponents, maxSuggestions int) []Match {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	text := matchText(keywords, components)

	r.mu.RLock()
	matches := make([]Match, 0, len(r.rules))
	for _, c := range r.rules {
		if m, ok := c.match(text, keywords); ok {
			matches = append(matches, m)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ScoreBreakdown.FinalScore > matches[j].ScoreBreakdown.FinalScore
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}

func (c compiledRule) match(text string, keywords []types.Keyword) (Match, bool) {
	rule := c.rule

	keywordMatches := []string{}
	for _, kw := range rule.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			keywordMatches = append(keywordMatches, kw)
		}
	}
	var keywordScore float64
	if len(rule.Keywords) > 0 {
		keywordScore = float64(len(keywordMatches)) / float64(len(rule.Keywords))
	}

	patternMatches := []string{}
	for i, re := range c.patterns {
		if re.MatchString(text) {
			patternMatches = append(patternMatches, rule.Patterns[i])
		}
	}
	var patternScore float64
	if len(c.patterns) > 0 {
		patternScore = float64(len(patternMatches)) / float64(len(c.patterns))
	}

	frequencyScore := frequencyScore(keywords, keywordMatches)

	final := (keywordScore*keywordScoreWeight + patternScore*patternScoreWeight + frequencyScore*frequencyScoreWeight) *
		rule.Weight * (rule.Confidence / 100)
	if final <= 0 {
		return Match{}, false
	}

	reasons := []string{}
	if rule.Reason != "" {
		reasons = append(reasons, rule.Reason)
	}
	if len(keywordMatches) > 0 {
		reasons = append(reasons, "Matched keywords: "+strings.Join(keywordMatches, ", "))
	}
	if len(patternMatches) > 0 {
		reasons = append(reasons, PatternMatchReason)
	}

	attributes := slices.Clone(rule.Attributes)
	if attributes == nil {
		attributes = []types.CategoryAttribute{}
	}

	return Match{
		Suggestion: types.CategorySuggestion{
			ID:         SuggestionID(rule.CategoryName),
			Name:       rule.CategoryName,
			Reasons:    reasons,
			Attributes: attributes,
			Confidence: confidence(final),
		},
		MatchedRules:   []string{rule.CategoryName},
		KeywordMatches: keywordMatches,
		PatternMatches: patternMatches,
		ScoreBreakdown: ScoreBreakdown{
			KeywordScore:   keywordScore,
			PatternScore:   patternScore,
			FrequencyScore: frequencyScore,
			FinalScore:     final,
		},
	}, true
}

// frequencyScore sums the scores of high-scoring input keywords that appear inside a matched rule keyword.
func frequencyScore(keywords []types.Keyword, ruleMatches []string) float64 {
	if len(ruleMatches) == 0 {
		return 0
	}
	lowered := make([]string, len(ruleMatches))
	for i, m := range ruleMatches {
		lowered[i] = strings.ToLower(m)
	}

	var sum float64
	for _, kw := range keywords {
		score := kw.ScoreValue()
		if score <= frequencyScoreFloor {
			continue
		}
		term := kw.NormalizedTerm()
		if term == "" {
			continue
		}
		for _, m := range lowered {
			if strings.Contains(m, term) {
				sum += score / 100
				break
			}
		}
	}
	return math.Min(sum/math.Max(1, float64(len(keywords))), 1)
}

func confidence(final float64) int {
	c := int(math.Round(final * 100))
	return max(0, min(c, 100))
}

// SuggestionID is stable for a category name so clients can correlate suggestions across calls.
func SuggestionID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("category:"+name)).String()
}

func matchText(keywords []types.Keyword, components *types.ProductTitleComponents) string {
	parts := make([]string, 0, len(keywords)+1)
	for _, kw := range keywords {
		parts = append(parts, kw.Term)
	}
	if text := components.Text(); text != "" {
		parts = append(parts, text)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func compileRule(rule types.CategoryRule) (compiledRule, error) {
	verr := &types.ValidationError{Subject: "category rule"}
	if err := rule.Validate(); err != nil {
		ve, ok := types.AsValidationError(err)
		if !ok {
			return compiledRule{}, err
		}
		verr.Merge("", ve)
	}

	patterns := make([]*regexp.Regexp, 0, len(rule.Patterns))
	for i, p := range rule.Patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			verr.Add(fmt.Sprintf("patterns[%d]", i), fmt.Sprintf("invalid regular expression: %v", err))
			continue
		}
		patterns = append(patterns, re)
	}
	if err := verr.Err(); err != nil {
		return compiledRule{}, err
	}
	return compiledRule{rule: cloneRule(rule), patterns: patterns}, nil
}

func ruleMentions(rule types.CategoryRule, q string) bool {
	if strings.Contains(strings.ToLower(rule.CategoryName), q) || strings.Contains(strings.ToLower(rule.Reason), q) {
		return true
	}
	for _, kw := range rule.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

func cloneRule(rule types.CategoryRule) types.CategoryRule {
	rule.Keywords = slices.Clone(rule.Keywords)
	rule.Patterns = slices.Clone(rule.Patterns)
	rule.Attributes = slices.Clone(rule.Attributes)
	for i := range rule.Attributes {
		rule.Attributes[i].Options = slices.Clone(rule.Attributes[i].Options)
	}
	return rule
}

func ruleKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
