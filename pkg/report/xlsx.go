package report

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"

	"clubmerge/pkg/schema"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	SheetMerged       = "合并结果"
	SheetMultiClub    = "多社团成员"
	SheetConflicts    = "字段冲突"
	SheetSummary      = "统计汇总"
	SheetCompleteness = "字段缺失统计"
)

// maxColumnWidth caps auto-sized column widths.
const maxColumnWidth = 50

// WriteXLSX writes the report as a workbook with one sheet per section.
func WriteXLSX(rep *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return eris.Wrap(err, "header style")
	}

	sheets := []struct {
		name string
		rows [][]string
	}{
		{SheetMerged, mergedRows(rep)},
		{SheetMultiClub, multiClubRows(rep)},
		{SheetConflicts, conflictRows(rep)},
		{SheetSummary, summaryRows(rep)},
	}
	if rep.Completeness != nil {
		sheets = append(sheets, struct {
			name string
			rows [][]string
		}{SheetCompleteness, completenessRows(rep.Completeness)})
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return eris.Wrapf(err, "rename sheet %q", s.name)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return eris.Wrapf(err, "create sheet %q", s.name)
		}
		if err := writeSheet(f, s.name, s.rows, header); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return eris.Wrapf(err, "save %s", path)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]string, headerStyle int) error {
	widths := make([]int, 0)
	for r, row := range rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cells[c] = v
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			if w := displayWidth(v); w > widths[c] {
				widths[c] = w
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return eris.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return eris.Wrapf(err, "write %s row %d", sheet, r+1)
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}

	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return eris.Wrap(err, "column name")
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return eris.Wrapf(err, "style %s header", sheet)
	}
	for c, w := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return eris.Wrap(err, "column name")
		}
		if err := f.SetColWidth(sheet, col, col, float64(min(w+2, maxColumnWidth))); err != nil {
			return eris.Wrapf(err, "width %s!%s", sheet, col)
		}
	}
	return nil
}

// displayWidth counts East Asian wide runes as two columns.
func displayWidth(s string) int {
	n := 0
	for len(s) > 0 {
		p, size := width.LookupString(s)
		switch p.Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
		if size == 0 {
			_, size = utf8.DecodeRuneInString(s)
		}
		s = s[size:]
	}
	return n
}

func mergedRows(rep *Report) [][]string {
	return tableRows(rep.Table())
}

func tableRows(t *schema.Table) [][]string {
	out := [][]string{append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		line := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			line[i] = row.Get(c)
		}
		out = append(out, line)
	}
	return out
}

func multiClubRows(rep *Report) [][]string {
	out := [][]string{{"姓名", "联系方式", "QQ号", "加入社团", "参加社团数量"}}
	for _, e := range rep.MultiClub {
		out = append(out, []string{e.Name, e.Contact, e.QQ, strings.Join(e.Clubs, "、"), strconv.Itoa(e.ClubCount)})
	}
	return out
}

func conflictRows(rep *Report) [][]string {
	out := [][]string{{"组号", "字段", "保留值", "舍弃值", "来源行", "处理方式"}}
	for _, c := range rep.Conflicts {
		rows := make([]string, len(c.Rows))
		for i, r := range c.Rows {
			rows[i] = strconv.Itoa(r + 1)
		}
		out = append(out, []string{
			strconv.Itoa(c.Group + 1),
			c.Field,
			c.Kept,
			strings.Join(c.Discarded, " | "),
			strings.Join(rows, ","),
			c.Resolution,
		})
	}
	return out
}

func summaryRows(rep *Report) [][]string {
	s := rep.Summary
	out := [][]string{
		{"项目", "数值"},
		{"合并前记录数", strconv.Itoa(s.RowsBefore)},
		{"合并后记录数", strconv.Itoa(s.RowsAfter)},
		{"减少记录数", strconv.Itoa(s.ReducedRows)},
		{"压缩率", percent(s.CompressionRate)},
		{"合并组数", strconv.Itoa(s.MergedGroups)},
		{"参与合并的记录数", strconv.Itoa(s.RowsInMergedGroups)},
		{"最大组规模", strconv.Itoa(s.LargestGroup)},
		{"字段冲突数", strconv.Itoa(s.Conflicts)},
		{"多社团成员数", strconv.Itoa(s.MultiClubMembers)},
		{"年级格式修正数", strconv.Itoa(s.YearFixes)},
		{"非标准年级数", strconv.Itoa(s.NonStandardGrades)},
	}
	for _, c := range rep.Clubs {
		out = append(out, []string{"社团人数: " + c.Club, strconv.Itoa(c.Members)})
	}
	return out
}

func completenessRows(c *Completeness) [][]string {
	out := [][]string{{"字段", "类型", "缺失数", "缺失率"}}
	for _, f := range c.Fields {
		kind := "重要"
		if f.Required {
			kind = "必填"
		}
		out = append(out, []string{f.Field, kind, strconv.Itoa(f.Missing), percent(f.Rate)})
	}
	return out
}

func percent(r float64) string {
	return fmt.Sprintf("%.1f%%", r*100)
}
