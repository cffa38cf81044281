package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"clubmerge/pkg/parser"
	"clubmerge/pkg/report"
	"clubmerge/pkg/schema"
)

// extractedFile is the combined roster written by the extract command.
const extractedFile = "提取结果.csv"

func (a *app) extractCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "extract [dir]",
		Short: "Combine the roster files of a folder into one table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, summary, err := a.load(args, recursive)
			if err != nil {
				return err
			}
			printLoadSummary(cmd, summary)

			if err := os.MkdirAll(a.cfg.Output.Dir, 0o755); err != nil {
				return eris.Wrapf(err, "create %s", a.cfg.Output.Dir)
			}
			path := filepath.Join(a.cfg.Output.Dir, extractedFile)
			if err := report.WriteTableCSV(table, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows -> %s\n", table.Len(), path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan subdirectories")
	return cmd
}

// load extracts every roster under the input directory.
func (a *app) load(args []string, recursive bool) (*schema.Table, *parser.LoadSummary, error) {
	dir := a.cfg.Input.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	loader := &parser.Loader{Logger: a.log.Named("extract")}
	return loader.LoadFolder(dir, recursive || a.cfg.Input.Recursive)
}

func printLoadSummary(cmd *cobra.Command, s *parser.LoadSummary) {
	out := cmd.OutOrStdout()
	for _, f := range s.Files {
		fmt.Fprintf(out, "%-30s %-12s %5d rows %3d skipped\n", f.File, f.Club, len(f.Rows), f.Skipped)
		for _, w := range f.Warnings {
			fmt.Fprintf(out, "    row %d: %s\n", w.Row, w.Message)
		}
	}
	for file, msg := range s.Failed {
		fmt.Fprintf(out, "%-30s failed: %s\n", filepath.Base(file), msg)
	}
}
