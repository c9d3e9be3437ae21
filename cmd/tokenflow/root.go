package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose    bool
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "tokenflow",
		Short:         "tokenflow generates design tokens and streams live previews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to tokenflow.yaml or tokenflow.toml (defaults to the current directory)")

	cmd.AddCommand(newGenerateCmd(flags))
	cmd.AddCommand(newCheckCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newExportCmd(flags))
	cmd.AddCommand(newImportCmd(flags))
	cmd.AddCommand(newDiffCmd(flags))
	cmd.AddCommand(newWatchCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
