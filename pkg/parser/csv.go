package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"clubmerge/pkg/schema"
)

// Parse errors.
var (
	ErrEmptyFile         = eris.New("empty file: no header row found")
	ErrNoDataRows        = eris.New("file contains no data rows")
	ErrUnsupportedFormat = eris.New("unsupported file format")
)

// headerScanRows is how many leading rows are searched for the header row.
const headerScanRows = 5

// ParseWarning represents a non-fatal issue encountered during parsing.
type ParseWarning struct {
	File    string `json:"file,omitempty"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ParseResult contains the parsed records alongside any warnings.
type ParseResult struct {
	Headers  []string            `json:"headers"`
	Records  []map[string]string `json:"records"`
	Warnings []ParseWarning      `json:"warnings"`
	Encoding string              `json:"encoding,omitempty"`
	// HeaderRow is the 1-indexed row the headers were read from.
	HeaderRow int `json:"headerRow"`
}

// StreamParse parses CSV bytes into a slice of maps (header -> value per row).
func StreamParse(data []byte) ([]map[string]string, error) {
	result, err := StreamParseWithWarnings(data)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// StreamParseWithWarnings parses CSV bytes and returns both records and any warnings.
func StreamParseWithWarnings(data []byte) (*ParseResult, error) {
	decoded, enc, err := DetectAndDecode(data)
	if err != nil {
		return nil, eris.Wrap(err, "encoding detection failed")
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	// Variable field counts are padded or truncated by FromGrid.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]string
	var warnings []ParseWarning
	rowNum := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			warnings = append(warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}
		grid = append(grid, row)
	}

	result, err := FromGrid(grid)
	if err != nil {
		return nil, err
	}
	result.Encoding = enc
	result.Warnings = append(warnings, result.Warnings...)
	return result, nil
}

// FromGrid turns raw spreadsheet rows into records. The header row is the
// first of the leading rows that contains a roster keyword (姓名, QQ, ...),
// defaulting to the first row; rows above it are titles and are dropped.
// Rows with a mismatched column count are padded or truncated.
func FromGrid(grid [][]string) (*ParseResult, error) {
	if len(grid) == 0 {
		return nil, ErrEmptyFile
	}

	headerIdx := 0
	for i := 0; i < len(grid) && i < headerScanRows; i++ {
		if schema.IsHeaderRow(grid[i]) {
			headerIdx = i
			break
		}
	}

	headers := uniqueHeaders(grid[headerIdx])
	headerCount := len(headers)
	result := &ParseResult{Headers: headers, HeaderRow: headerIdx + 1}

	for i := headerIdx + 1; i < len(grid); i++ {
		row := grid[i]
		rowNum := i + 1
		if isBlankRow(row) {
			continue
		}

		if len(row) != headerCount {
			if len(row) < headerCount {
				padded := make([]string, headerCount)
				copy(padded, row)
				row = padded
			} else {
				if !isBlankRow(row[headerCount:]) {
					result.Warnings = append(result.Warnings, ParseWarning{
						Row:     rowNum,
						Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), headerCount),
					})
				}
				row = row[:headerCount]
			}
		}

		record := make(map[string]string, headerCount)
		for j, h := range headers {
			record[h] = strings.TrimSpace(row[j])
		}
		result.Records = append(result.Records, record)
	}

	if len(result.Records) == 0 {
		return nil, ErrNoDataRows
	}
	return result, nil
}

// uniqueHeaders trims headers, names blank ones after their position and
// suffixes duplicates so every column keeps its own key.
func uniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("列%d", i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s_%d", h, n)
		}
		out[i] = h
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
