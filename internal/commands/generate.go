package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/simonhull/lyrebird/internal/conflict"
	"github.com/simonhull/lyrebird/internal/marker"
	"github.com/simonhull/lyrebird/internal/output"
	"github.com/spf13/cobra"
)

// GenerateCmd creates the 'generate' command for one-off generation
// outside the plan
func GenerateCmd() *cobra.Command {
	var unitID string
	var dryRun, force, skipExisting, showDiff, interactive bool

	cmd := &cobra.Command{
		Use:   "generate [generator] [path] [key=value...]",
		Short: "Write one generation unit into a file",
		Long: `Renders a generator and writes the result into the target file,
fenced by begin/end markers. Edit the generated code freely afterwards;
'lyrebird sync' will pick your edits back up.

The target path may be omitted when the generator declares an output
path in its definition. Parameters are key=value pairs; list parameters
split their value on commas, with field:value segments for structured
items (a repeated field starts the next item).

Examples:
  lyrebird generate ts-const src/constants/api.ts name=apiUrl value=/api
  lyrebird generate ts-interface name=User fields=name:id,type:number
  lyrebird generate ts-interface name=User fields=name:id fields=name:email
  lyrebird generate ts-const src/constants/api.ts name=x value=1 --dry-run

A file that already holds other content is refused. Pass --force,
--skip, --diff, or --interactive to decide what happens instead.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			flagCount := 0
			conflictingFlags := []string{}
			if force {
				flagCount++
				conflictingFlags = append(conflictingFlags, "--force")
			}
			if skipExisting {
				flagCount++
				conflictingFlags = append(conflictingFlags, "--skip")
			}
			if showDiff {
				flagCount++
				conflictingFlags = append(conflictingFlags, "--diff")
			}
			if interactive {
				flagCount++
				conflictingFlags = append(conflictingFlags, "--interactive")
			}
			if flagCount > 1 {
				output.Error(fmt.Sprintf("Conflicting flags: %v are mutually exclusive", conflictingFlags))
				os.Exit(1)
			}

			proj, err := openProject(".")
			if err != nil {
				output.Error(err.Error())
				output.Info("Run 'lyrebird init' to set up a project here")
				os.Exit(1)
			}

			def, err := proj.Registry.Resolve(args[0])
			if err != nil {
				output.Error(err.Error())
				listGenerators(proj)
				os.Exit(1)
			}

			explicit, rawParams := splitPathAndParams(args[1:])
			params, err := parseParams(def, rawParams)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			path, err := targetPath(def, explicit, params)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			output.Verbose(fmt.Sprintf("Generating %s into %s (dry-run=%v)", def.Name, path, dryRun))

			if dryRun {
				wrapped, err := proj.Producer.Render(path, unitID, def.Name, params)
				if err != nil {
					output.Error(err.Error())
					os.Exit(1)
				}
				writer := cmd.OutOrStdout()
				fmt.Fprintln(writer, wrapped)
				fmt.Fprintf(writer, "\n✓ [DRY RUN] would write %s (%d bytes)\n", path, len(wrapped)+1)
				return
			}

			err = proj.Producer.Create(path, unitID, def.Name, params)
			var exists *marker.AlreadyExistsError
			if errors.As(err, &exists) {
				if flagCount == 0 {
					output.Error(err.Error())
					output.Info("Tip: pass --force, --skip, --diff, or --interactive to resolve the conflict")
					os.Exit(1)
				}
				resolveCollision(proj, exists, path, unitID, def.Name, params, force, skipExisting, showDiff)
				return
			}
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			output.Success("Created " + path)
			output.Info("Edit the generated code, then run:")
			output.Step("lyrebird sync " + path)
		},
	}

	cmd.Flags().StringVar(&unitID, "unit", "", "Unit id written into the begin marker (defaults to the generator name)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the unit instead of writing it")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file without asking")
	cmd.Flags().BoolVar(&skipExisting, "skip", false, "Keep an existing file without asking")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show what would change, then ask")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Ask what to do when the file exists")

	return cmd
}

// resolveCollision runs the conflict strategy picked by the flags and
// carries out the decision.
func resolveCollision(proj *project, exists *marker.AlreadyExistsError, path, unitID, generator string, params map[string]any, force, skipExisting, showDiff bool) {
	planned, err := proj.Producer.Render(path, unitID, generator, params)
	if err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
	existing, err := os.ReadFile(path)
	if err != nil {
		output.Error(fmt.Sprintf("reading %s: %v", path, err))
		os.Exit(1)
	}

	strategy, err := conflict.New(force, skipExisting, showDiff)
	if err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
	resolution, err := strategy.Decide(conflict.Conflict{
		Path:     path,
		Reason:   exists.Reason,
		Existing: existing,
		Planned:  []byte(planned + "\n"),
	})
	if err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}

	switch resolution {
	case conflict.Overwrite:
		if err := proj.Producer.Replace(path, unitID, generator, params); err != nil {
			output.Error(err.Error())
			os.Exit(1)
		}
		output.Success("Replaced " + path)
	case conflict.Skip:
		output.Info("Kept " + path)
	default:
		output.Info("Cancelled")
		os.Exit(1)
	}
}
