package parser

import (
	"bytes"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of an .xlsx workbook.
func ParseXLSX(path string) (*ParseResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()
	return parseWorkbook(f)
}

// ParseXLSXBytes reads the first sheet of an in-memory .xlsx workbook.
func ParseXLSXBytes(data []byte) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "open workbook")
	}
	defer f.Close()
	return parseWorkbook(f)
}

func parseWorkbook(f *excelize.File) (*ParseResult, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, eris.Wrapf(err, "read sheet %q", sheets[0])
	}
	result, err := FromGrid(rows)
	if err != nil {
		return nil, err
	}
	result.Encoding = "xlsx"
	return result, nil
}
