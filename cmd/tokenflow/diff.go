package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tokenflow/internal/infrastructure/store"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

type diffOptions struct {
	file       string
	unified    bool
	jsonOutput bool
}

func newDiffCmd(root *rootFlags) *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff [snapshot]",
		Short: "Compare the project palette with a snapshot or exported document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runDiff(cmd, root, name, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Compare against an exported document instead of a snapshot")
	cmd.Flags().BoolVarP(&opts.unified, "unified", "u", false, "Print a unified diff of the stylesheets")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the comparison as JSON")

	return cmd
}

func runDiff(cmd *cobra.Command, root *rootFlags, name string, opts *diffOptions) error {
	if name == "" && opts.file == "" {
		return newCommandError("diff", "selecting a document", fmt.Errorf("no input"), "Pass a snapshot name or --file <path>.")
	}

	app, err := buildApp(cmd, root)
	if err != nil {
		return err
	}

	var (
		doc   token.Document
		label string
	)
	if opts.file != "" {
		label = opts.file
		doc, err = store.ReadDocument(opts.file)
		if err != nil {
			return newCommandError("diff", opts.file, err, "Pass a document produced by 'tokenflow export'.")
		}
	} else {
		label = "snapshot/" + name
		snapshots, err := store.NewSnapshotStore(app.Config.Snapshots.Dir)
		if err != nil {
			return newCommandError("diff", "opening snapshot directory", err, "Set snapshots.dir to a readable directory.")
		}
		doc, err = snapshots.Load(name)
		if err != nil {
			return newCommandError("diff", fmt.Sprintf("loading snapshot %q", name), err, "Run 'tokenflow export --snapshot <name>' first.")
		}
	}

	cmp, err := app.Service.Compare(doc, label)
	if err != nil {
		return newCommandError("diff", "resolving document", err, "The document failed validation.")
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.jsonOutput:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cmp)
	case opts.unified:
		fmt.Fprint(out, highlight(out, cmp.Unified, "diff"))
	default:
		for _, change := range cmp.Changes {
			fmt.Fprintln(out, change)
		}
		fmt.Fprintf(out, "%d tokens differ from %s\n", len(cmp.Changes), label)
	}
	return nil
}
