package main

import (
	"fmt"
	"io"

	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/spf13/cobra"
)

func newParentsCmd(opts *options) *cobra.Command {
	var editing, mode string
	cmd := &cobra.Command{
		Use:   "parents",
		Short: "List the records that may become the parent of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tree.ParseParentMode(mode)
			if err != nil {
				return err
			}
			records, err := loadRecords(cmd, opts.file)
			if err != nil {
				return err
			}
			candidates := tree.ValidParents(records, editing, m)
			return render(cmd.OutOrStdout(), opts.output, candidates, func(w io.Writer) error {
				for _, c := range candidates {
					if _, err := fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&editing, "editing", "", "id of the category being edited, empty for a new one")
	cmd.Flags().StringVar(&mode, "mode", "subtree", "exclusion mode: self or subtree")
	return cmd
}
