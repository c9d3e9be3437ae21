package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tokenflow/internal/infrastructure/store"
	"github.com/alexisbeaulieu97/tokenflow/internal/preview"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
)

type exportOptions struct {
	snapshot string
	output   string
}

func newExportCmd(root *rootFlags) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the token registry as a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "Save into the snapshot directory under this name")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the document to this path")

	return cmd
}

func runExport(cmd *cobra.Command, root *rootFlags, opts *exportOptions) error {
	app, err := buildApp(cmd, root)
	if err != nil {
		return err
	}
	doc := app.Registry.Export()

	switch {
	case opts.snapshot != "":
		snapshots, err := store.NewSnapshotStore(app.Config.Snapshots.Dir)
		if err != nil {
			return newCommandError("export", "opening snapshot directory", err, "Set snapshots.dir to a writable directory.")
		}
		if err := snapshots.Save(opts.snapshot, doc); err != nil {
			return newCommandError("export", fmt.Sprintf("saving snapshot %q", opts.snapshot), err, "Snapshot names may not contain path separators.")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved snapshot %s (%d tokens)\n", opts.snapshot, doc.Metadata.TotalTokens)
	case opts.output != "":
		if err := store.WriteDocument(opts.output, doc); err != nil {
			return newCommandError("export", opts.output, err, "Check that the directory exists and is writable.")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d tokens to %s\n", doc.Metadata.TotalTokens, opts.output)
	default:
		data, err := docJSON(doc)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return nil
}

type importOptions struct {
	snapshot string
	output   string
}

func newImportCmd(root *rootFlags) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Validate an exported document and render its stylesheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runImport(cmd, root, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshot, "snapshot", "s", "", "Load a named snapshot instead of a file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the stylesheet to a file instead of stdout")

	return cmd
}

func runImport(cmd *cobra.Command, root *rootFlags, path string, opts *importOptions) error {
	if path == "" && opts.snapshot == "" {
		return newCommandError("import", "selecting a document", fmt.Errorf("no input"), "Pass a file path or --snapshot <name>.")
	}

	app, err := buildApp(cmd, root)
	if err != nil {
		return err
	}

	var doc token.Document
	if opts.snapshot != "" {
		snapshots, err := store.NewSnapshotStore(app.Config.Snapshots.Dir)
		if err != nil {
			return newCommandError("import", "opening snapshot directory", err, "Set snapshots.dir to a readable directory.")
		}
		doc, err = snapshots.Load(opts.snapshot)
		if err != nil {
			return newCommandError("import", fmt.Sprintf("loading snapshot %q", opts.snapshot), err, "Run 'tokenflow export --snapshot <name>' first.")
		}
	} else {
		doc, err = store.ReadDocument(path)
		if err != nil {
			return newCommandError("import", path, err, "Pass a document produced by 'tokenflow export'.")
		}
	}

	if err := app.Service.Import(cmd.Context(), doc); err != nil {
		return newCommandError("import", "validating document", err, "The document was rejected as a whole; nothing was changed.")
	}
	return writeOutput(cmd.OutOrStdout(), opts.output, []byte(preview.RenderProperties(app.Surface.Snapshot())))
}

func docJSON(doc token.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
