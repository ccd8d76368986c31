package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/spf13/cobra"
)

func newCyclesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "Report parent links that loop back on themselves",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd, opts.file)
			if err != nil {
				return err
			}
			cycles := tree.NewIndex(records).Cycles()
			if cycles == nil {
				cycles = [][]string{}
			}
			return render(cmd.OutOrStdout(), opts.output, cycles, func(w io.Writer) error {
				if len(cycles) == 0 {
					_, err := fmt.Fprintln(w, "no cycles")
					return err
				}
				for _, c := range cycles {
					if _, err := fmt.Fprintln(w, strings.Join(c, " -> ")); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
