package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{"id", "term", "volume", "competition", "weight", "tags", "notes", "score"}

// TagSeparator joins tags inside the tags column.
const TagSeparator = "|"

var requiredColumns = []string{"term", "volume", "competition"}

// ReadCSV decodes keywords from CSV with a header row. Columns may appear in any order;
// term, volume and competition are required, the rest are optional. Every unparsable cell is
// reported, keyed by record index.
func ReadCSV(r io.Reader) ([]types.Keyword, error) {
	verr := &types.ValidationError{Subject: "keyword CSV"}
	keywords, err := readCSV(r, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return keywords, nil
}

// readCSV records cell-level problems in verr and returns only I/O and header errors.
func readCSV(r io.Reader, verr *types.ValidationError) ([]types.Keyword, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []types.Keyword{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	missing := &types.ValidationError{Subject: "keyword CSV"}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing.Add("header", fmt.Sprintf("missing column %q", name))
		}
	}
	if err := missing.Err(); err != nil {
		return nil, err
	}

	keywords := []types.Keyword{}
	for index := 0; ; index++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", index, err)
		}
		keywords = append(keywords, parseRecord(record, columns, fmt.Sprintf("[%d]", index), verr))
	}
	return keywords, nil
}

func parseRecord(record []string, columns map[string]int, prefix string, verr *types.ValidationError) types.Keyword {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	kw := types.Keyword{
		ID:    cell("id"),
		Term:  cell("term"),
		Notes: cell("notes"),
	}

	if v := cell("volume"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verr.Add(prefix+".volume", fmt.Sprintf("must be an integer, got %q", v))
		}
		kw.Volume = n
	}
	if v := cell("competition"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			verr.Add(prefix+".competition", fmt.Sprintf("must be a number, got %q", v))
		}
		kw.Competition = f
	}
	kw.Weight = parseOptionalFloat(cell("weight"), prefix+".weight", verr)
	kw.Score = parseOptionalFloat(cell("score"), prefix+".score", verr)

	if v := cell("tags"); v != "" {
		for _, tag := range strings.Split(v, TagSeparator) {
			if tag = strings.TrimSpace(tag); tag != "" {
				kw.Tags = append(kw.Tags, types.KeywordTag(tag))
			}
		}
	}
	return kw
}

func parseOptionalFloat(v, field string, verr *types.ValidationError) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		verr.Add(field, fmt.Sprintf("must be a number, got %q", v))
		return nil
	}
	return &f
}

// WriteCSV writes keywords with CSVHeader as the first row.
func WriteCSV(w io.Writer, keywords []types.Keyword) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, kw := range keywords {
		tags := make([]string, len(kw.Tags))
		for i, t := range kw.Tags {
			tags[i] = string(t)
		}
		record := []string{
			kw.ID,
			kw.Term,
			strconv.Itoa(kw.Volume),
			formatFloat(kw.Competition),
			formatOptionalFloat(kw.Weight),
			strings.Join(tags, TagSeparator),
			kw.Notes,
			formatOptionalFloat(kw.Score),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record for %s: %w", kw.Term, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
