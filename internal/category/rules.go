package category

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/listing-optimizer/internal/schemas"
	"github.com/jonathan/listing-optimizer/internal/types"
	schemadocs "github.com/jonathan/listing-optimizer/schemas"
)

// Format is the encoding of a rule file.
type Format string

// Supported rule file formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

//go:embed rules.yaml
var seedRules []byte

// SeedRules returns the rule table shipped with the binary.
func SeedRules() ([]types.CategoryRule, error) {
	rules, err := ParseRules(seedRules, FormatYAML)
	if err != nil {
		return nil, &RuleLoadError{Path: "(embedded rules.yaml)", Message: "invalid seed rules", Cause: err}
	}
	return rules, nil
}

// FormatFromPath picks the rule format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported rule file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// LoadRules reads and validates a rule file.
func LoadRules(path string) ([]types.CategoryRule, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &RuleLoadError{Path: path, Message: "unknown format", Cause: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RuleLoadError{Path: path, Message: "failed to read file", Cause: err}
	}

	rules, err := ParseRules(data, format)
	if err != nil {
		return nil, &RuleLoadError{Path: path, Message: "invalid rule file", Cause: err}
	}
	return rules, nil
}

// ParseRules decodes a rule list, checks it against the category rule schema and validates
// every rule. All rule violations are reported together.
func ParseRules(data []byte, format Format) ([]types.CategoryRule, error) {
	var document any
	var rules []types.CategoryRule

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if err := schemas.ValidateDocument(schemadocs.CategoryRules, document); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("failed to decode rules: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		if err := schemas.ValidateDocument(schemadocs.CategoryRules, document); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("failed to decode rules: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported rule format %q", format)
	}

	verr := &types.ValidationError{Subject: "category rules"}
	for i := range rules {
		if err := validateRule(&rules[i]); err != nil {
			if ve, ok := types.AsValidationError(err); ok {
				verr.Merge(fmt.Sprintf("[%d]", i), ve)
				continue
			}
			return nil, err
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// validateRule checks struct constraints and that every pattern compiles.
func validateRule(rule *types.CategoryRule) error {
	_, err := compileRule(*rule)
	return err
}
