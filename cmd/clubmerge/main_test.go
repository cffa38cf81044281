package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := (&app{}).rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeRosters(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"棋协社团会员信息统计表.csv": "姓名,联系方式,QQ号,年级专业层次班级\n张三,13800138000,,22级计科\n",
		"篮协信息统计表.csv":     "姓名,手机号,QQ号码\n张三,,123456789\n李四,13900139000,\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestFixYear(t *testing.T) {
	out, err := run(t, "", "fixyear", "22级计科", "20班5级", "2023级")
	require.NoError(t, err)
	assert.Equal(t, "2022级计科\n2025级\n2023级\n", out)
}

func TestFixYear_StdinExplain(t *testing.T) {
	out, err := run(t, "22级\n软件工程\n", "fixyear", "--explain")
	require.NoError(t, err)
	assert.Equal(t, "22级\t2022级\tshort_year\n软件工程\n", out)
}

func TestExtract(t *testing.T) {
	dir := writeRosters(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "", "extract", dir, "--output", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows")
	assert.FileExists(t, filepath.Join(outDir, extractedFile))
}

func TestMergeAndCheck(t *testing.T) {
	dir := writeRosters(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "", "merge", dir, "-o", outDir, "--format", "json,csv")
	require.NoError(t, err)
	assert.Contains(t, out, "rows 3 -> 2")

	snapshot := filepath.Join(outDir, "社团成员合并.json")
	assert.FileExists(t, snapshot)
	assert.FileExists(t, filepath.Join(outDir, "社团成员合并.csv"))

	out, err = run(t, "", "check", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "records 2")
}

func TestMerge_NoInput(t *testing.T) {
	_, err := run(t, "", "merge", t.TempDir())
	assert.Error(t, err)
}
