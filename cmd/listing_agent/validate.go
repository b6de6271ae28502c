package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/schemas"
	schemadocs "github.com/jonathan/listing-optimizer/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON document against a schema",
	Long: `Validates a JSON file against one of the built-in schemas (keywords, category-rules, config)
or against a JSON Schema file path.`,
	RunE: runValidate,
}

var (
	validateSchema string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Built-in schema name (keywords, category-rules, config) or schema file path (required)")
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "Path to the JSON file to validate (required)")
	if err := validateCmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}
	rootCmd.AddCommand(validateCmd)
}

// builtinSchema returns the embedded schema registered under name.
func builtinSchema(name string) (string, bool) {
	switch name {
	case "keywords":
		return schemadocs.Keywords, true
	case "category-rules":
		return schemadocs.CategoryRules, true
	case "config":
		return schemadocs.Config, true
	default:
		return "", false
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if schema, ok := builtinSchema(validateSchema); ok {
		content, readErr := os.ReadFile(validateJSON)
		if readErr != nil {
			if errors.Is(readErr, os.ErrNotExist) {
				return fmt.Errorf("JSON file not found: %s", validateJSON)
			}
			return fmt.Errorf("failed to read %s: %w", validateJSON, readErr)
		}
		err = schemas.ValidateJSONString(schema, string(content))
	} else {
		err = schemas.ValidateJSON(validateSchema, validateJSON)
	}

	var verr *schemas.ValidationError
	switch {
	case errors.As(err, &verr):
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation failed: %s", verr.Error())
		return fmt.Errorf("validation failed with %d error(s)", len(verr.Errors))
	case err != nil:
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", validateJSON)
	return nil
}
