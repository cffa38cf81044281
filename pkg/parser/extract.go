package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"clubmerge/pkg/schema"
)

// Supported roster file extensions.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// Extraction is the member rows read from one roster file.
type Extraction struct {
	File     string             `json:"file"`
	Club     string             `json:"club"`
	Rows     []schema.MemberRow `json:"rows"`
	Extra    []string           `json:"extra"`
	Mappings map[string]string  `json:"mappings"`
	Skipped  int                `json:"skipped"`
	Warnings []ParseWarning     `json:"warnings"`
}

// ReadFile parses a roster file, choosing the reader by extension.
func ReadFile(path string) (*ParseResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		if len(data) == 0 {
			return nil, ErrEmptyFile
		}
		return StreamParseWithWarnings(data)
	case ExtXLSX:
		return ParseXLSX(path)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
}

// ExtractMembers maps the parsed records of file onto canonical columns.
//
// Rows whose name is empty or purely numeric (totals, serial numbers in the
// wrong column) are skipped. A missing club cell falls back to the club name
// carried by the file name. Unrecognised columns pass through under their
// own header; the serial column is dropped.
func ExtractMembers(res *ParseResult, file string) *Extraction {
	mappings := schema.InferMappings(res.Headers)
	out := &Extraction{
		File:     filepath.Base(file),
		Club:     schema.ClubNameFromFilename(file),
		Mappings: mappings,
	}

	nameCol := ""
	for src, target := range mappings {
		if target == schema.FieldName {
			nameCol = src
		}
	}
	for _, h := range res.Headers {
		if _, ok := mappings[h]; !ok {
			out.Extra = append(out.Extra, h)
		}
	}
	if nameCol == "" {
		out.Warnings = append(out.Warnings, ParseWarning{
			File:    out.File,
			Row:     res.HeaderRow,
			Message: "no name column found",
		})
		out.Skipped = len(res.Records)
		return out
	}

	for _, rec := range res.Records {
		name := strings.TrimSpace(rec[nameCol])
		if schema.IsEmptyValue(name) || isDigits(name) {
			out.Skipped++
			continue
		}

		row := schema.MemberRow{schema.FieldSource: out.File}
		for _, h := range res.Headers {
			v := rec[h]
			target, ok := mappings[h]
			switch {
			case !ok:
				row[h] = v
			case target == schema.FieldSerial:
			default:
				row[target] = v
			}
		}
		if schema.IsEmptyValue(row[schema.FieldClub]) {
			row[schema.FieldClub] = out.Club
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
