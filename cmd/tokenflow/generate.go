package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tokenflow/internal/preview"
)

type generateOptions struct {
	format string
	output string
}

func newGenerateCmd(root *rootFlags) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the token stylesheet from the project palette",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "css", "Output format: css or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootFlags, opts *generateOptions) error {
	app, err := buildApp(cmd, root)
	if err != nil {
		return err
	}

	var data []byte
	switch opts.format {
	case "css":
		data = []byte(preview.RenderProperties(app.Surface.Snapshot()))
	case "json":
		data, err = json.MarshalIndent(app.Registry.ResolveAll(), "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
	default:
		return newCommandError("generate", "selecting output format", fmt.Errorf("unknown format %q", opts.format), "Use --format css or --format json.")
	}

	if opts.output == "" {
		data = []byte(highlight(cmd.OutOrStdout(), string(data), opts.format))
	}
	return writeOutput(cmd.OutOrStdout(), opts.output, data)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return newCommandError("write output", path, err, "Check that the directory exists and is writable.")
	}
	return nil
}
