package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/spf13/cobra"
)

func newFlattenCmd(opts *options) *cobra.Command {
	var exclude string
	cmd := &cobra.Command{
		Use:   "flatten",
		Short: "List the tree in pre-order as a parent selector would",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd, opts.file)
			if err != nil {
				return err
			}
			tag, err := opts.tag()
			if err != nil {
				return err
			}
			entries := tree.Flatten(tree.NewBuilder(tag).Build(records), exclude)
			return render(cmd.OutOrStdout(), opts.output, entries, func(w io.Writer) error {
				for _, e := range entries {
					if _, err := fmt.Fprintf(w, "%s%s\t/%s\n", strings.Repeat("  ", e.Depth), e.Name, e.Path); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "leave out this id and its subtree")
	return cmd
}
