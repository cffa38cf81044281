package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubmerge/pkg/engine"
	"clubmerge/pkg/schema"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindSpreadsheets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), "x")
	writeFile(t, filepath.Join(dir, "b.xlsx"), "x")
	writeFile(t, filepath.Join(dir, "~$b.xlsx"), "x")
	writeFile(t, filepath.Join(dir, "c.txt"), "x")
	writeFile(t, filepath.Join(dir, "sub", "d.CSV"), "x")

	files, err := FindSpreadsheets(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.xlsx")}, files)

	files, err = FindSpreadsheets(dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(dir, "sub", "d.CSV"),
	}, files)
}

func TestLoader_LoadFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "棋协社团会员信息统计表.csv"), "姓名,联系方式,QQ号\n张三,13800138000,\n")
	writeFile(t, filepath.Join(dir, "篮协信息统计表.csv"), "姓名,手机号,QQ号码,备注\n张三,,123456789,队长\n李四,13900139000,,\n")
	writeFile(t, filepath.Join(dir, "broken.csv"), "")

	table, summary, err := (&Loader{}).LoadFolder(dir, false)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 3, summary.TotalRows)
	assert.Len(t, summary.Files, 2)
	assert.Contains(t, summary.Failed, filepath.Join(dir, "broken.csv"))

	assert.Equal(t, append(append([]string(nil), schema.CanonicalColumns...), "备注"), table.Columns)
	assert.Equal(t, []string{"棋协", "篮协", "篮协"}, table.Column(schema.FieldClub))

	res, err := engine.NewMerger(engine.DefaultOptions()).Run(table)
	require.NoError(t, err)
	require.Len(t, res.Members, 2)
	assert.Equal(t, []string{"棋协", "篮协"}, res.Members[0].Clubs)
	assert.Equal(t, "123456789", res.Members[0].QQ)
	assert.Equal(t, "队长", res.Members[0].Field("备注"))
}

func TestLoader_NoRows(t *testing.T) {
	_, _, err := (&Loader{}).LoadFolder(t.TempDir(), false)
	assert.ErrorIs(t, err, ErrNoDataRows)
}
