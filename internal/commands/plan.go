package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/simonhull/lyrebird/internal/manifest"
	"github.com/simonhull/lyrebird/internal/marker"
	"github.com/simonhull/lyrebird/internal/output"
	"github.com/spf13/cobra"
)

// PlanCmd creates the plan command with subcommands
func PlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Record generator calls and run them in dependency order",
		Long: `The plan is a YAML document listing generator calls, each with an id,
parameters, an output file, and the ids it depends on. 'plan run'
materializes every call in an order that respects those dependencies:
files without a unit are created, files with one are synced.

Examples:
  lyrebird plan add ts-const src/constants/api.ts name=apiUrl value=/api
  lyrebird plan add ts-interface name=User fields=name:id --id user --depends-on api
  lyrebird plan list
  lyrebird plan run --dry-run
  lyrebird plan run`,
	}

	cmd.AddCommand(planAddCmd())
	cmd.AddCommand(planListCmd())
	cmd.AddCommand(planRunCmd())

	return cmd
}

// planAddCmd records one generator call in the plan
func planAddCmd() *cobra.Command {
	var id string
	var dependsOn []string

	cmd := &cobra.Command{
		Use:   "add [generator] [path] [key=value...]",
		Short: "Record a generator call in the plan",
		Long: `Validates the call and appends it to the plan. The call's id must be
unique; every id in --depends-on must already be in the plan, and a
call can never depend on itself. Invalid calls are rejected before
anything is written.

The path may be omitted when the generator's definition declares an
output path.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
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

			// Catch calls that could never run: params the generator
			// rejects, or a file type with no marker dialect.
			if err := def.ValidateParams(params); err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			if _, err := marker.DialectFor(path); err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			if id == "" {
				id = uuid.NewString()
			}

			store, err := manifest.Load(proj.Config.PlanPath)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			call := manifest.Call{
				ID:        id,
				Generator: def.Name,
				Params:    params,
				Output:    path,
				DependsOn: dependsOn,
			}
			if err := store.Add(call); err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			if err := store.Save(); err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			output.Success(fmt.Sprintf("Recorded %s (%s → %s)", id, def.Name, path))
			output.Info("Run the plan with:")
			output.Step("lyrebird plan run")
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Call id other calls can depend on (defaults to a generated UUID)")
	cmd.Flags().StringSliceVar(&dependsOn, "depends-on", nil, "Ids this call must run after (repeatable)")

	return cmd
}

// planListCmd prints the plan and its resolved run order
func planListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the plan's calls and their run order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			proj, err := openProject(".")
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			store, err := manifest.Load(proj.Config.PlanPath)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			calls := store.All()
			if len(calls) == 0 {
				output.Info("The plan is empty. Record calls with 'lyrebird plan add'.")
				return
			}

			for _, call := range calls {
				output.Info(fmt.Sprintf("%s: %s → %s", call.ID, call.Generator, call.Output))
				if len(call.DependsOn) > 0 {
					output.Step("after " + strings.Join(call.DependsOn, ", "))
				}
			}

			ordered, err := manifest.Resolve(calls)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			ids := make([]string, len(ordered))
			for i, call := range ordered {
				ids[i] = call.ID
			}
			output.Info("Run order: " + strings.Join(ids, " → "))
		},
	}
}

// planRunCmd materializes the plan in dependency order
func planRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Materialize every call in dependency order",
		Long: `Resolves the plan's dependency order, then creates or syncs each
call's output in turn. A call whose file fails is reported and skipped;
the rest of the plan still runs.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			proj, err := openProject(".")
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			store, err := manifest.Load(proj.Config.PlanPath)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			if store.Len() == 0 {
				output.Info("The plan is empty. Record calls with 'lyrebird plan add'.")
				return
			}

			ordered, err := manifest.Resolve(store.All())
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			writer := cmd.OutOrStdout()
			failed := 0
			for _, call := range ordered {
				if dryRun {
					action := "create"
					if data, err := os.ReadFile(call.Output); err == nil && marker.HasMarker(string(data)) {
						action = "sync"
					}
					fmt.Fprintf(writer, "✓ [DRY RUN] would %s %s (%s, unit %s)\n",
						action, call.Output, call.Generator, call.ID)
					continue
				}

				action, err := proj.Producer.Materialize(call.Output, call.ID, call.Generator, call.NormalizedParams())
				if err != nil {
					failed++
					output.Warn(fmt.Sprintf("%s: %v", call.ID, err))
					continue
				}
				switch action {
				case "create":
					output.Success("Created " + call.Output)
				default:
					output.Success("Synced " + call.Output)
				}
			}

			switch {
			case dryRun:
				fmt.Fprintln(writer, "\n✓ Dry-run complete. Run without --dry-run to write files.")
			case failed > 0:
				output.Error(fmt.Sprintf("%d of %d calls failed", failed, len(ordered)))
				os.Exit(1)
			default:
				output.Success(fmt.Sprintf("Plan complete: %d call(s)", len(ordered)))
			}
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what the run would do without writing")

	return cmd
}
