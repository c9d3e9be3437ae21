package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tokenflow/internal/generator"
	"github.com/alexisbeaulieu97/tokenflow/internal/tui"
)

type previewOptions struct {
	domain string
}

func newPreviewCmd(root *rootFlags) *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the resolved tokens as terminal swatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.domain, "domain", "d", "", "Only show one domain (color, spacing, typography, component)")

	return cmd
}

func runPreview(cmd *cobra.Command, root *rootFlags, opts *previewOptions) error {
	if opts.domain != "" {
		if _, ok := generator.ParseKind(opts.domain); !ok {
			return newCommandError("preview", "selecting domain", fmt.Errorf("unknown domain %q", opts.domain), "Use color, spacing, typography or component.")
		}
	}

	app, err := buildApp(cmd, root)
	if err != nil {
		return err
	}

	values := app.Registry.ResolveAll()
	out := cmd.OutOrStdout()
	for _, kind := range generator.Kinds() {
		if opts.domain != "" && kind.String() != opts.domain {
			continue
		}
		tokens := app.Registry.TokensByDomain(kind.String())
		if len(tokens) == 0 {
			continue
		}
		sort.Slice(tokens, func(i, j int) bool { return tokens[i].Name < tokens[j].Name })

		fmt.Fprintf(out, "\n%s\n", kind)
		for _, tok := range tokens {
			fmt.Fprintln(out, tui.Swatch(tok.Name, values[tok.Name]))
		}
	}
	return nil
}
