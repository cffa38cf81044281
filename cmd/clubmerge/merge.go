package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clubmerge/pkg/engine"
	"clubmerge/pkg/report"
)

func (a *app) mergeCmd() *cobra.Command {
	var (
		recursive bool
		formats   []string
	)
	cmd := &cobra.Command{
		Use:   "merge [dir]",
		Short: "Extract, merge duplicate members and write reports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, summary, err := a.load(args, recursive)
			if err != nil {
				return err
			}
			printLoadSummary(cmd, summary)

			opts, err := a.cfg.EngineOptions(a.log)
			if err != nil {
				return err
			}
			res, err := engine.NewMerger(opts).Run(table)
			if err != nil {
				return err
			}

			comp := a.cfg.Checker().Check(res.Table())
			rep := report.Compile(res, comp)

			if len(formats) == 0 {
				formats = a.cfg.Output.Formats
			}
			w := &report.Writer{Dir: a.cfg.Output.Dir, Base: a.cfg.Output.Base, Logger: a.log.Named("report")}
			paths, err := w.Write(rep, formats)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := rep.Summary
			fmt.Fprintf(out, "rows %d -> %d (%d merged groups, %d conflicts, %d multi-club members)\n",
				s.RowsBefore, s.RowsAfter, s.MergedGroups, s.Conflicts, s.MultiClubMembers)
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan subdirectories")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "Output formats: xlsx, csv, json, sqlite, md")
	return cmd
}
