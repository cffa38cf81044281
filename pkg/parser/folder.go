package parser

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"clubmerge/pkg/schema"
)

// FindSpreadsheets lists the roster files under dir in lexical order.
// Office lock files ("~$...") and hidden files are ignored.
func FindSpreadsheets(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			return nil
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ExtCSV, ExtXLSX:
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "scan %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Loader combines roster files into one table.
type Loader struct {
	Logger *zap.Logger
}

// LoadSummary describes one LoadFiles call.
type LoadSummary struct {
	Files       []*Extraction     `json:"files"`
	Failed      map[string]string `json:"failed"`
	TotalRows   int               `json:"totalRows"`
	SkippedRows int               `json:"skippedRows"`
}

// LoadFolder loads every roster file under dir.
func (l *Loader) LoadFolder(dir string, recursive bool) (*schema.Table, *LoadSummary, error) {
	files, err := FindSpreadsheets(dir, recursive)
	if err != nil {
		return nil, nil, err
	}
	return l.LoadFiles(files)
}

// LoadFiles extracts each file and appends its rows to a table with the
// canonical column order. A file that cannot be read is logged and
// skipped; an error is returned only when no file yields any row.
func (l *Loader) LoadFiles(files []string) (*schema.Table, *LoadSummary, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}

	table := schema.NewTable(schema.CanonicalColumns)
	summary := &LoadSummary{Failed: make(map[string]string)}

	for _, file := range files {
		res, err := ReadFile(file)
		if err != nil {
			log.Warn("skipping roster file", zap.String("file", file), zap.Error(err))
			summary.Failed[file] = err.Error()
			continue
		}
		ex := ExtractMembers(res, file)
		for i := range ex.Warnings {
			ex.Warnings[i].File = ex.File
		}
		for _, w := range res.Warnings {
			w.File = ex.File
			ex.Warnings = append(ex.Warnings, w)
		}

		table.AddColumns(ex.Extra...)
		for _, row := range ex.Rows {
			table.Append(row)
		}
		summary.Files = append(summary.Files, ex)
		summary.TotalRows += len(ex.Rows)
		summary.SkippedRows += ex.Skipped

		log.Info("extracted roster",
			zap.String("file", ex.File),
			zap.String("club", ex.Club),
			zap.String("encoding", res.Encoding),
			zap.Int("rows", len(ex.Rows)),
			zap.Int("skipped", ex.Skipped),
			zap.Int("warnings", len(ex.Warnings)),
		)
	}

	if table.Len() == 0 {
		return nil, summary, eris.Wrapf(ErrNoDataRows, "%d files scanned", len(files))
	}
	return table, summary, nil
}
