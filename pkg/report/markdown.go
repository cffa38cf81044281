package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// maxMarkdownIssues bounds the incomplete-record table of the Markdown report.
const maxMarkdownIssues = 50

// RenderMarkdown renders the summary report.
func RenderMarkdown(rep *Report) string {
	s := rep.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "# 社团成员合并报告\n\n")
	fmt.Fprintf(&b, "- 运行编号: `%s`\n", s.RunID)
	fmt.Fprintf(&b, "- 生成时间: %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## 合并统计\n\n| 项目 | 数值 |\n| --- | --- |\n")
	for _, kv := range summaryRows(rep)[1:] {
		fmt.Fprintf(&b, "| %s | %s |\n", kv[0], kv[1])
	}

	if rep.result != nil && len(rep.Stats.LinksByField) > 0 {
		b.WriteString("\n## 合并依据\n\n| 字段 | 合并组数 |\n| --- | --- |\n")
		for _, f := range rep.Result().Options.KeyFields {
			fmt.Fprintf(&b, "| %s | %d |\n", f, rep.Stats.LinksByField[f])
		}
	}

	if len(rep.MultiClub) > 0 {
		b.WriteString("\n## 多社团成员\n\n| 姓名 | 社团数 | 社团 |\n| --- | --- | --- |\n")
		for _, e := range rep.MultiClub {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", e.Name, e.ClubCount, strings.Join(e.Clubs, "、"))
		}
	}

	if len(rep.Conflicts) > 0 {
		b.WriteString("\n## 字段冲突\n\n| 组号 | 字段 | 保留值 | 舍弃值 |\n| --- | --- | --- | --- |\n")
		for _, c := range rep.Conflicts {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", c.Group+1, c.Field, c.Kept, strings.Join(c.Discarded, " / "))
		}
	}

	if c := rep.Completeness; c != nil {
		b.WriteString("\n## 完整性检查\n\n")
		fmt.Fprintf(&b, "- 总记录数: %d\n- 完整记录: %d\n- 不完整记录: %d\n- 完整率: %s\n\n",
			c.Total, c.Complete, c.Incomplete, percent(c.CompletionRate))
		b.WriteString("| 字段 | 缺失数 | 缺失率 |\n| --- | --- | --- |\n")
		for _, f := range c.Fields {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", f.Field, f.Missing, percent(f.Rate))
		}
		if len(c.Issues) > 0 {
			b.WriteString("\n| 姓名 | 严重程度 | 缺失字段 |\n| --- | --- | --- |\n")
			for i, is := range c.Issues {
				if i == maxMarkdownIssues {
					fmt.Fprintf(&b, "\n另有 %d 条不完整记录未列出。\n", len(c.Issues)-maxMarkdownIssues)
					break
				}
				missing := append(append([]string(nil), is.MissingRequired...), is.MissingImportant...)
				fmt.Fprintf(&b, "| %s | %s | %s |\n", is.Name, is.Severity, strings.Join(missing, "、"))
			}
		}
	}
	return b.String()
}

// WriteMarkdown writes RenderMarkdown(rep) to path.
func WriteMarkdown(rep *Report, path string) error {
	if err := os.WriteFile(path, []byte(RenderMarkdown(rep)), 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}
