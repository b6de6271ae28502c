// Package category recommends marketplace categories by matching keywords and product
// attributes against a table of category rules.
package category

import (
	"errors"
	"fmt"
)

// ErrRuleNotFound is returned when no rule exists for a category name.
var ErrRuleNotFound = errors.New("category rule not found")

// RuleLoadError represents a failure to read or parse a rule file.
type RuleLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RuleLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load category rules %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load category rules %s: %s", e.Path, e.Message)
}

func (e *RuleLoadError) Unwrap() error {
	return e.Cause
}
