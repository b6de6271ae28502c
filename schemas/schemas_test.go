package schemas_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/listing-optimizer/internal/schemas"
	schemadocs "github.com/jonathan/listing-optimizer/schemas"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for name := range schemadocs.All() {
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(".", name))
			require.NoError(t, err, "should be able to read schema file")

			var v interface{}
			assert.NoError(t, json.Unmarshal(data, &v), "schema file should be valid JSON: %s", name)
		})
	}
}

func TestSchemaFiles_ValidJSONSchema(t *testing.T) {
	for name, content := range schemadocs.All() {
		t.Run(name, func(t *testing.T) {
			_, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
			assert.NoError(t, err)
		})
	}
}

func TestEmbeddedSchemasMatchFiles(t *testing.T) {
	for name, content := range schemadocs.All() {
		data, err := os.ReadFile(filepath.Join(".", name))
		require.NoError(t, err)
		assert.Equal(t, string(data), content, name)
	}
}

func TestKeywordsSchema_Documents(t *testing.T) {
	valid := `[{"term": "스마트폰", "volume": 10000, "competition": 85, "tags": ["trending"]}]`
	assert.NoError(t, schemas.ValidateJSONString(schemadocs.Keywords, valid))

	invalid := `[{"term": "", "volume": -1, "competition": 101, "tags": ["viral"]}]`
	err := schemas.ValidateJSONString(schemadocs.Keywords, invalid)
	require.Error(t, err)

	ve, ok := err.(*schemas.ValidationError)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 4)
}

func TestCategoryRulesSchema_Documents(t *testing.T) {
	valid := `[{"category_name": "남성의류", "keywords": ["셔츠"], "patterns": [], "weight": 0.9, "confidence": 85,
		"attributes": [{"name": "사이즈", "type": "select", "required": true, "options": ["M"]}]}]`
	assert.NoError(t, schemas.ValidateJSONString(schemadocs.CategoryRules, valid))

	invalid := `[{"category_name": "남성의류", "weight": 2, "confidence": 85, "attributes": [{"name": "x", "type": "color"}]}]`
	assert.Error(t, schemas.ValidateJSONString(schemadocs.CategoryRules, invalid))
}
