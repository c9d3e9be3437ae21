package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/tokenflow/internal/tui"
)

type checkOptions struct {
	jsonOutput bool
	strict     bool
}

func newCheckCmd(root *rootFlags) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check text/background contrast for the project palette",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with an error when any pair fails")

	return cmd
}

func runCheck(cmd *cobra.Command, root *rootFlags, opts *checkOptions) error {
	app, err := buildApp(cmd, root)
	if err != nil {
		return err
	}

	report := app.Service.Validate(cmd.Context())
	out := cmd.OutOrStdout()

	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, tui.RenderReport(report))
		fmt.Fprintf(out, "\n%d pairs checked, %d failing\n", len(report.Pairs), len(report.Violations))
	}

	if opts.strict && !report.AllValid {
		return newCommandError("check", "validating contrast", fmt.Errorf("%d contrast violations", len(report.Violations)), "Adjust the failing colors or enable preview.auto_correct.")
	}
	return nil
}
