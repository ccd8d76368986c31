package main

import (
	"fmt"
	"io"

	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/spf13/cobra"
)

func newSelectCmd(opts *options) *cobra.Command {
	var previous string
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Show which category stays selected after a reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd, opts.file)
			if err != nil {
				return err
			}
			tag, err := opts.tag()
			if err != nil {
				return err
			}
			sel := tree.NewSelection(tree.NewBuilder(tag))
			sel.Select(previous)
			sel.Reload(records)

			result := map[string]string{"selectedId": sel.SelectedID()}
			return render(cmd.OutOrStdout(), opts.output, result, func(w io.Writer) error {
				if sel.SelectedID() == "" {
					_, err := fmt.Fprintln(w, "(none)")
					return err
				}
				_, err := fmt.Fprintln(w, sel.SelectedID())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&previous, "previous", "", "previously selected id")
	return cmd
}
