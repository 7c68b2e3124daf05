package commands

import (
	"fmt"

	"github.com/simonhull/lyrebird"
	"github.com/simonhull/lyrebird/internal/output"
	"github.com/spf13/cobra"
)

// RootCmd creates and returns the root command for the lyrebird CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "lyrebird",
		Short: "Code generator that survives hand edits",
		Long: `Lyrebird renders source code from declarative templates and keeps
regenerating it after you edit the output.

Generated code lives between begin/end markers inside ordinary source
files. Edit it freely; 'lyrebird sync' reads your edits back into the
generator's parameters and regenerates the unit without losing them.

Start with:
• lyrebird init to set up lyrebird.yml and starter generators
• lyrebird generate <generator> <path> key=value... to write a generation unit
• lyrebird sync <path> to regenerate a unit from its edited body
• lyrebird plan add/list/run for batch generation with dependencies

Learn more: https://github.com/simonhull/lyrebird`,
		Version: lyrebird.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}

// VersionCmd creates the version command
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lyrebird version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "lyrebird "+lyrebird.Version)
		},
	}
}
