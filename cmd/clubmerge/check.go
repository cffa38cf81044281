package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"clubmerge/pkg/engine"
	"clubmerge/pkg/parser"
	"clubmerge/pkg/report"
	"clubmerge/pkg/schema"
)

func (a *app) checkCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check record completeness of a roster or a merge snapshot (.json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadCheckTable(args[0])
			if err != nil {
				return err
			}
			comp := a.cfg.Checker().Check(table)
			printCompleteness(cmd, comp, limit)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of incomplete records to list")
	return cmd
}

// loadCheckTable reads a merge snapshot or a single roster file.
func loadCheckTable(path string) (*schema.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		res, err := engine.DeserializeResult(data)
		if err != nil {
			return nil, err
		}
		return res.Table(), nil
	}

	parsed, err := parser.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ex := parser.ExtractMembers(parsed, path)
	table := schema.NewTable(schema.CanonicalColumns)
	table.AddColumns(ex.Extra...)
	for _, row := range ex.Rows {
		table.Append(row)
	}
	return table, nil
}

func printCompleteness(cmd *cobra.Command, c *report.Completeness, limit int) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "records %d, complete %d, incomplete %d (%.1f%%)\n",
		c.Total, c.Complete, c.Incomplete, c.CompletionRate*100)
	for _, sev := range []report.Severity{report.SeveritySevere, report.SeverityMinor, report.SeverityNormal} {
		fmt.Fprintf(out, "  %s: %d\n", sev, c.BySeverity[sev])
	}
	for _, f := range c.Fields {
		fmt.Fprintf(out, "  %-16s missing %5d (%.1f%%)\n", f.Field, f.Missing, f.Rate*100)
	}
	for i, is := range c.Issues {
		if i == limit {
			fmt.Fprintf(out, "... %d more\n", len(c.Issues)-limit)
			break
		}
		missing := append(append([]string(nil), is.MissingRequired...), is.MissingImportant...)
		fmt.Fprintf(out, "row %d %s [%s] %s\n", is.Row+1, is.Name, is.Severity, strings.Join(missing, "、"))
	}
}
