package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/spf13/cobra"
)

var (
	matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newTreeCmd(opts *options) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category tree, optionally pruned by a search term",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd, opts.file)
			if err != nil {
				return err
			}
			tag, err := opts.tag()
			if err != nil {
				return err
			}
			forest := tree.Filter(tree.NewBuilder(tag).Build(tree.WithTotals(records)), search)
			return render(cmd.OutOrStdout(), opts.output, forest, func(w io.Writer) error {
				return writeTree(w, forest, search)
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "keep only matches and their ancestors")
	return cmd
}

func writeTree(w io.Writer, forest []*tree.Node, search string) error {
	needle := strings.ToLower(strings.TrimSpace(search))
	var err error
	tree.Walk(forest, func(n *tree.Node, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), highlight(n.Name, needle),
			countStyle.Render(fmt.Sprintf("(%d)", n.TotalProductCount)))
		return true
	})
	return err
}

func highlight(name, needle string) string {
	span, ok := tree.Highlight(name, needle)
	if !ok {
		return name
	}
	before, match, after := span.Split(name)
	return before + matchStyle.Render(match) + after
}
