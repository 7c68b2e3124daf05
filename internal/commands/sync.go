package commands

import (
	"fmt"
	"os"

	"github.com/simonhull/lyrebird/internal/diff"
	"github.com/simonhull/lyrebird/internal/marker"
	"github.com/simonhull/lyrebird/internal/output"
	"github.com/spf13/cobra"
)

// SyncCmd creates the 'sync' command for regenerating edited units
func SyncCmd() *cobra.Command {
	var all bool
	var showDiff bool
	var ignore []string

	cmd := &cobra.Command{
		Use:   "sync [path]",
		Short: "Regenerate generation units from their edited bodies",
		Long: `Reads the generated region of a file, recovers the generator's
parameters from whatever the code looks like now, and regenerates the
region with them. Everything outside the begin/end markers is left
byte-for-byte as it was.

With --all, walks a directory (default: the current one) and syncs
every source file that carries a begin marker. Failures are reported
per file and never stop the rest of the batch.

Examples:
  lyrebird sync src/constants/api.ts
  lyrebird sync src/constants/api.ts --diff
  lyrebird sync --all
  lyrebird sync --all src --ignore 'legacy/**'`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			proj, err := openProject(".")
			if err != nil {
				output.Error(err.Error())
				output.Info("Run 'lyrebird init' to set up a project here")
				os.Exit(1)
			}

			if all {
				if showDiff {
					output.Error("--diff previews a single file; combine it with a path, not --all")
					os.Exit(1)
				}
				dir := "."
				if len(args) > 0 {
					dir = args[0]
				}
				syncAll(proj, dir, ignore)
				return
			}

			if len(args) == 0 {
				output.Error("Pass the file to sync, or --all to sync a directory")
				os.Exit(1)
			}
			path := args[0]

			if showDiff {
				current, updated, err := proj.Producer.SyncPreview(path)
				if err != nil {
					output.Error(err.Error())
					os.Exit(1)
				}
				body := diff.Unified(path+" (on disk)", path+" (synced)", current, updated, nil)
				if body == "" {
					output.Info("Already in sync: " + path)
					return
				}
				fmt.Fprint(cmd.OutOrStdout(), body)
				return
			}

			if err := proj.Producer.Sync(path); err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			output.Success("Synced " + path)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Sync every marked file under a directory")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Preview the change without writing")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Glob patterns --all skips, in addition to lyrebird.yml's sync.ignore")

	return cmd
}

func syncAll(proj *project, dir string, ignore []string) {
	globs := append(append([]string{}, proj.Config.IgnoreGlobs...), ignore...)

	report, err := proj.Producer.SyncAll(dir, marker.SyncOptions{IgnoreGlobs: globs})
	if err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}

	for _, path := range report.Synced {
		output.Success("Synced " + path)
	}
	for _, f := range report.Failed {
		output.Warn(fmt.Sprintf("%s: %v", f.Path, f.Err))
	}

	switch {
	case len(report.Synced) == 0 && len(report.Failed) == 0:
		output.Info("No generation units found under " + dir)
	case report.Ok():
		output.Info(fmt.Sprintf("Synced %d file(s)", len(report.Synced)))
	default:
		output.Error(fmt.Sprintf("Synced %d file(s), %d failed", len(report.Synced), len(report.Failed)))
		os.Exit(1)
	}
}
