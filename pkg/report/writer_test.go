package report

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"clubmerge/pkg/engine"
	"clubmerge/pkg/schema"
)

func compiled(t *testing.T) *Report {
	t.Helper()
	res := mergeRoster(t)
	return Compile(res, NewChecker().Check(res.Table()))
}

func TestWriteXLSX(t *testing.T) {
	rep := compiled(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(rep, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetMerged, SheetMultiClub, SheetConflicts, SheetSummary, SheetCompleteness}, f.GetSheetList())

	rows, err := f.GetRows(SheetMerged)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, rep.Columns, rows[0])
	assert.Equal(t, "张三", rows[1][0])

	w, err := f.GetColWidth(SheetMerged, "A")
	require.NoError(t, err)
	assert.LessOrEqual(t, w, float64(maxColumnWidth))
}

func TestWriteCSV(t *testing.T) {
	rep := compiled(t)
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(rep, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, bomUTF8))
	lines := strings.Split(strings.TrimSpace(string(data[len(bomUTF8):])), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, strings.Join(rep.Columns, ","), lines[0])
}

func TestWriteJSON(t *testing.T) {
	rep := compiled(t)
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(rep, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	back, err := engine.DeserializeResult(data)
	require.NoError(t, err)
	assert.Equal(t, rep.Result().Table(), back.Table())
}

func TestWriteSQLite(t *testing.T) {
	rep := compiled(t)
	path := filepath.Join(t.TempDir(), "out.db")
	require.NoError(t, WriteSQLite(rep, path))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "members"`).Scan(&n))
	assert.Equal(t, 4, n)

	var name string
	require.NoError(t, db.QueryRow(`SELECT "姓名" FROM "members" WHERE "row" = 1`).Scan(&name))
	assert.Equal(t, "张三", name)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "conflicts"`).Scan(&n))
	assert.Equal(t, len(rep.Conflicts), n)

	var v string
	require.NoError(t, db.QueryRow(`SELECT "value" FROM "summary" WHERE "item" = '合并后记录数'`).Scan(&v))
	assert.Equal(t, "4", v)
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(compiled(t))
	assert.True(t, strings.HasPrefix(md, "# 社团成员合并报告"))
	assert.Contains(t, md, "## 多社团成员")
	assert.Contains(t, md, "| 王五 | 3 | 棋协、篮协、书法社 |")
	assert.Contains(t, md, "## 完整性检查")
}

func TestWriter_Write(t *testing.T) {
	rep := compiled(t)
	dir := filepath.Join(t.TempDir(), "nested")
	w := &Writer{Dir: dir, Base: "roster"}

	paths, err := w.Write(rep, Formats)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "roster.xlsx"),
		filepath.Join(dir, "roster.csv"),
		filepath.Join(dir, "roster.json"),
		filepath.Join(dir, "roster.db"),
		filepath.Join(dir, "roster_报告.md"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	_, err = w.Write(rep, []string{"pdf"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteSQLite_QuotedHeader(t *testing.T) {
	col := `备"注`
	rep := &Report{
		Columns: []string{schema.FieldName, col},
		Rows:    []schema.MemberRow{{schema.FieldName: "张三", col: "队长"}},
	}
	path := filepath.Join(t.TempDir(), "quoted.db")
	require.NoError(t, WriteSQLite(rep, path))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var v string
	require.NoError(t, db.QueryRow(`SELECT "备""注" FROM "members" WHERE "row" = 1`).Scan(&v))
	assert.Equal(t, "队长", v)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"姓名"`, quoteIdent("姓名"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestWriteTableCSV(t *testing.T) {
	tbl := schema.NewTable([]string{schema.FieldName, "备注"})
	tbl.Rows = []schema.MemberRow{{schema.FieldName: "张三", "备注": "a,b"}}
	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, WriteTableCSV(tbl, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\ufeff姓名,备注\n张三,\"a,b\"\n", string(data))
}
