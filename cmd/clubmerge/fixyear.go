package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) fixYearCmd() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "fixyear [text...]",
		Short: "Repair cohort years in grade text; reads lines from stdin without arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.cfg.Formatter()
			if err != nil {
				return err
			}
			inputs := args
			if len(inputs) == 0 {
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					inputs = append(inputs, sc.Text())
				}
				if err := sc.Err(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, in := range inputs {
				fixed, applied := f.Explain(in)
				if explain && len(applied) > 0 {
					fmt.Fprintf(out, "%s\t%s\t%s\n", in, fixed, strings.Join(applied, ","))
					continue
				}
				fmt.Fprintln(out, fixed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "Print input, output and applied rules")
	return cmd
}
