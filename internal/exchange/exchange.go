// Package exchange converts keyword catalogs to and from CSV and JSON files.
package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jonathan/listing-optimizer/internal/schemas"
	"github.com/jonathan/listing-optimizer/internal/types"
	schemadocs "github.com/jonathan/listing-optimizer/schemas"
)

// Format is a keyword file encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported keyword format %q (want csv or json)", name)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ImportKeywords decodes and validates a keyword batch. The whole batch is rejected when any
// record is invalid, and the error lists every offending record.
func ImportKeywords(r io.Reader, format Format) ([]types.Keyword, error) {
	verr := &types.ValidationError{Subject: "keyword batch"}
	var (
		keywords []types.Keyword
		err      error
	)
	switch format {
	case FormatCSV:
		keywords, err = readCSV(r, verr)
	case FormatJSON:
		keywords, err = ReadJSON(r)
	default:
		return nil, fmt.Errorf("unsupported keyword format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := validateBatch(keywords, verr); err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return keywords, nil
}

// ExportKeywords encodes keywords in the given format.
func ExportKeywords(w io.Writer, format Format, keywords []types.Keyword) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, keywords)
	case FormatJSON:
		return WriteJSON(w, keywords)
	default:
		return fmt.Errorf("unsupported keyword format %q", format)
	}
}

// ReadJSON decodes a JSON array of keywords after checking it against the keyword catalog schema.
func ReadJSON(r io.Reader) ([]types.Keyword, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords: %w", err)
	}
	if err := schemas.ValidateJSONString(schemadocs.Keywords, string(data)); err != nil {
		return nil, fmt.Errorf("keyword file does not match schema: %w", err)
	}

	var keywords []types.Keyword
	if err := json.Unmarshal(data, &keywords); err != nil {
		return nil, fmt.Errorf("failed to parse keywords JSON: %w", err)
	}
	if keywords == nil {
		keywords = []types.Keyword{}
	}
	return keywords, nil
}

// WriteJSON writes keywords as an indented JSON array.
func WriteJSON(w io.Writer, keywords []types.Keyword) error {
	if keywords == nil {
		keywords = []types.Keyword{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(keywords); err != nil {
		return fmt.Errorf("failed to write keywords JSON: %w", err)
	}
	return nil
}

// validateBatch normalizes tags in place and records every keyword violation, including terms
// repeated within the batch, in verr.
func validateBatch(keywords []types.Keyword, verr *types.ValidationError) error {
	seen := make(map[string]int, len(keywords))
	for i := range keywords {
		kw := &keywords[i]
		kw.Tags = types.NormalizeTags(kw.Tags)
		prefix := fmt.Sprintf("[%d]", i)
		if err := kw.Validate(); err != nil {
			ve, ok := types.AsValidationError(err)
			if !ok {
				return err
			}
			verr.Merge(prefix, ve)
		}
		key := kw.NormalizedTerm()
		if key == "" {
			continue
		}
		if first, dup := seen[key]; dup {
			verr.Add(prefix+".term", fmt.Sprintf("duplicates the term of [%d]", first))
			continue
		}
		seen[key] = i
	}
	return nil
}
