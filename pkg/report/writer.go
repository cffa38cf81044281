package report

import (
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"clubmerge/pkg/engine"
	"clubmerge/pkg/schema"
)

// Output formats accepted by Writer.
const (
	FormatXLSX     = "xlsx"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatSQLite   = "sqlite"
	FormatMarkdown = "md"
)

// Formats lists every supported output format.
var Formats = []string{FormatXLSX, FormatCSV, FormatJSON, FormatSQLite, FormatMarkdown}

// ErrUnknownFormat is returned for an output format outside Formats.
var ErrUnknownFormat = eris.New("unknown output format")

// Writer writes a report in several formats into one directory.
type Writer struct {
	Dir    string
	Base   string
	Logger *zap.Logger
}

// Write writes rep in each format and returns the written paths.
func (w *Writer) Write(rep *Report, formats []string) ([]string, error) {
	log := w.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create %s", w.Dir)
	}
	base := w.Base
	if base == "" {
		base = "社团成员合并"
	}

	var paths []string
	for _, format := range formats {
		var path string
		var err error
		switch format {
		case FormatXLSX:
			path = filepath.Join(w.Dir, base+".xlsx")
			err = WriteXLSX(rep, path)
		case FormatCSV:
			path = filepath.Join(w.Dir, base+".csv")
			err = WriteCSV(rep, path)
		case FormatJSON:
			path = filepath.Join(w.Dir, base+".json")
			err = WriteJSON(rep, path)
		case FormatSQLite:
			path = filepath.Join(w.Dir, base+".db")
			err = WriteSQLite(rep, path)
		case FormatMarkdown:
			path = filepath.Join(w.Dir, base+"_报告.md")
			err = WriteMarkdown(rep, path)
		default:
			err = eris.Wrapf(ErrUnknownFormat, "%q", format)
		}
		if err != nil {
			return paths, err
		}
		log.Info("report written", zap.String("format", format), zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteCSV writes the merged rows with a UTF-8 BOM so spreadsheet apps
// pick the right encoding.
func WriteCSV(rep *Report, path string) error {
	return WriteTableCSV(rep.Table(), path)
}

// WriteTableCSV writes t with a header row and a UTF-8 BOM.
func WriteTableCSV(t *schema.Table, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "close %s", path)
		}
	}()

	if _, err := f.Write(bomUTF8); err != nil {
		return eris.Wrap(err, "write BOM")
	}
	cw := csv.NewWriter(f)
	if err := cw.WriteAll(tableRows(t)); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// WriteJSON writes the merge result snapshot, readable by engine.DeserializeResult.
func WriteJSON(rep *Report, path string) error {
	if rep.result == nil {
		return eris.New("report has no merge result")
	}
	data, err := engine.SerializeResult(rep.result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

// WriteSQLite writes members, conflicts and the summary into a fresh database.
func WriteSQLite(rep *Report, path string) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return eris.Wrapf(err, "open %s", path)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return eris.Wrap(err, "begin")
	}
	defer tx.Rollback()

	defs := make([]string, len(rep.Columns))
	qCols := make([]string, len(rep.Columns))
	for i, c := range rep.Columns {
		defs[i] = quoteIdent(c) + " TEXT"
		qCols[i] = quoteIdent(c)
	}
	stmts := []string{
		`CREATE TABLE "members" ("row" INTEGER PRIMARY KEY, ` + strings.Join(defs, ",") + `)`,
		`CREATE TABLE "conflicts" ("group_index" INTEGER, "field" TEXT, "kept" TEXT, "discarded" TEXT, "rows" TEXT, "resolution" TEXT)`,
		`CREATE TABLE "summary" ("item" TEXT PRIMARY KEY, "value" TEXT)`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return eris.Wrap(err, "create table")
		}
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(rep.Columns)+1), ",")
	ins, err := tx.Prepare(`INSERT INTO "members" ("row",` + strings.Join(qCols, ",") + `) VALUES (` + ph + `)`)
	if err != nil {
		return eris.Wrap(err, "prepare members")
	}
	defer ins.Close()
	for i, row := range rep.Rows {
		args := make([]any, 0, len(rep.Columns)+1)
		args = append(args, i+1)
		for _, c := range rep.Columns {
			args = append(args, row.Get(c))
		}
		if _, err := ins.Exec(args...); err != nil {
			return eris.Wrapf(err, "insert member %d", i+1)
		}
	}

	for _, c := range rep.Conflicts {
		rows := make([]string, len(c.Rows))
		for i, r := range c.Rows {
			rows[i] = strconv.Itoa(r)
		}
		if _, err := tx.Exec(`INSERT INTO "conflicts" VALUES (?,?,?,?,?,?)`,
			c.Group, c.Field, c.Kept, strings.Join(c.Discarded, " | "), strings.Join(rows, ","), c.Resolution); err != nil {
			return eris.Wrap(err, "insert conflict")
		}
	}

	for _, kv := range summaryRows(rep)[1:] {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO "summary" VALUES (?,?)`, kv[0], kv[1]); err != nil {
			return eris.Wrap(err, "insert summary")
		}
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "commit")
	}
	return nil
}

// quoteIdent quotes an SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
