package category

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-optimizer/internal/schemas"
	"github.com/jonathan/listing-optimizer/internal/types"
)

func TestSeedRules(t *testing.T) {
	rules, err := SeedRules()
	require.NoError(t, err)

	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.CategoryName)
		assert.NotEmpty(t, rule.Keywords, rule.CategoryName)
		assert.NotEmpty(t, rule.Attributes, rule.CategoryName)
	}
	assert.Equal(t, []string{"남성의류", "여성의류", "디지털/가전", "식품", "뷰티", "생활용품", "스포츠/레저", "반려동물용품"}, names)
}

func writeRules(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules_Formats(t *testing.T) {
	jsonPath := writeRules(t, "rules.json", `[
		{"category_name": "도서", "keywords": ["책", "소설"], "patterns": ["isbn"], "weight": 0.7, "confidence": 90,
		 "reason": "도서 관련", "attributes": [{"name": "저자", "type": "text", "required": true}]}
	]`)
	rules, err := LoadRules(jsonPath)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "도서", rules[0].CategoryName)
	assert.Equal(t, 90.0, rules[0].Confidence)

	yamlPath := writeRules(t, "rules.yml", `
- category_name: 도서
  keywords: [책]
  patterns: []
  weight: 0.7
  confidence: 90
  attributes:
    - {name: 형태, type: select, required: true, options: [종이책, 전자책]}
`)
	rules, err = LoadRules(yamlPath)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"종이책", "전자책"}, rules[0].Attributes[0].Options)
}

func TestLoadRules_Errors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadRules(writeRules(t, "rules.txt", "[]"))
		var loadErr *RuleLoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Contains(t, err.Error(), "unsupported rule file extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := LoadRules(writeRules(t, "rules.json", `[{"category_name": "x", "weight": 2, "confidence": 50}]`))
		var schemaErr *schemas.ValidationError
		require.True(t, errors.As(err, &schemaErr), "got %v", err)
		assert.NotEmpty(t, schemaErr.Errors)
	})

	t.Run("rule violations across rules", func(t *testing.T) {
		_, err := LoadRules(writeRules(t, "rules.yaml", `
- category_name: a
  weight: 0.5
  confidence: 50
  attributes:
    - {name: 사이즈, type: select}
- category_name: b
  patterns: ['[']
  weight: 0.5
  confidence: 50
`))
		ve, ok := types.AsValidationError(err)
		require.True(t, ok, "got %v", err)
		fields := make([]string, 0, len(ve.Violations))
		for _, v := range ve.Violations {
			fields = append(fields, v.Field)
		}
		assert.Equal(t, []string{"[0].attributes[0].options", "[1].patterns[0]"}, fields)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseRules([]byte("- [unterminated"), FormatYAML)
		assert.Error(t, err)
	})
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("rules.YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = FormatFromPath("/etc/listing/rules.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = FormatFromPath("rules")
	assert.Error(t, err)
}
