package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var version = "0.1.0"

type options struct {
	file   string
	output string
	locale string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "cattree",
		Short: "Inspect category trees exported from the catalog",
		Long: "cattree reads a flat list of category records (JSON or YAML, a bare list or a\n" +
			"{\"categories\": [...]} document) and prints the derived tree views.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "-", "records file, - for stdin")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")
	root.PersistentFlags().StringVar(&opts.locale, "locale", "und", "collation locale for sibling order")

	root.AddCommand(
		newTreeCmd(opts),
		newFlattenCmd(opts),
		newParentsCmd(opts),
		newSelectCmd(opts),
		newCyclesCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "cattree %s\n", version)
			},
		},
	)
	return root
}

func (o *options) tag() (language.Tag, error) {
	tag, err := language.Parse(o.locale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid --locale %q: %w", o.locale, err)
	}
	return tag, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
