package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/simonhull/lyrebird/internal/input"
	"github.com/simonhull/lyrebird/internal/output"
	projectpkg "github.com/simonhull/lyrebird/internal/project"
	"github.com/simonhull/lyrebird/internal/scaffold"
	"github.com/spf13/cobra"
)

// InitCmd creates the 'init' command for setting up a project
func InitCmd() *cobra.Command {
	var name string
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Set up a lyrebird project",
		Long: `Creates the files a lyrebird project needs:
• lyrebird.yml with the project configuration
• lyrebird/generators/ with two starter definitions
• lyrebird/plan.yml holding an empty plan

Files that already exist are kept, so init is safe to re-run; pass
--force to lay them down fresh. The project name defaults to the Go
module in the directory, when there is one.

Example:
  lyrebird init
  lyrebird init apps/web --name web`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			projectName := name
			if projectName == "" {
				projectName = input.New().Ask("Project name", projectpkg.DefaultName(dir))
			}

			output.Verbose(fmt.Sprintf("Scaffolding lyrebird project %q in %s", projectName, dir))

			ops, err := scaffold.Project(dir, projectName)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			if err := scaffold.Execute(context.Background(), ops, scaffold.ExecuteOptions{
				DryRun: dryRun,
				Force:  force,
				Writer: cmd.OutOrStdout(),
			}); err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "\n✓ Dry-run complete. Run without --dry-run to create files.")
				return
			}

			output.Success(fmt.Sprintf("Lyrebird project ready: %s", projectName))
			output.Info("Next steps:")
			output.Step("lyrebird generators")
			output.Step("lyrebird generate ts-const src/constants/api.ts name=apiUrl value=/api")
			output.Step("lyrebird sync src/constants/api.ts  (after editing the generated code)")
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (prompts when omitted)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what init would create without writing")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that already exist")

	return cmd
}
