package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/simonhull/lyrebird/internal/output"
	"github.com/simonhull/lyrebird/internal/registry"
	"github.com/spf13/cobra"
)

// GeneratorsCmd creates the 'generators' command listing the project's
// generator definitions
func GeneratorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List the generators this project defines",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			proj, err := openProject(".")
			if err != nil {
				output.Error(err.Error())
				output.Info("Run 'lyrebird init' to set up a project here")
				os.Exit(1)
			}

			if proj.Registry.Len() == 0 {
				output.Info("No generators defined. Add YAML definitions under " + proj.Config.GeneratorsDir)
				return
			}

			for _, def := range proj.Registry.All() {
				line := def.Name
				if def.Description != "" {
					line += ": " + def.Description
				}
				output.Info(line)
				if def.Output != "" {
					output.Step("output: " + def.Output)
				}
				for _, p := range def.Params {
					output.Step("param: " + describeParam(p))
				}
			}
		},
	}
}

func describeParam(p registry.ParamSpec) string {
	desc := p.Name
	kind := p.Kind
	if kind == "" {
		kind = "string"
	}
	desc += " (" + kind
	if p.Required {
		desc += ", required"
	}
	desc += ")"

	if len(p.Fields) > 0 {
		names := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			names[i] = f.Name
			if f.Kind == "number" {
				names[i] += ":number"
			}
		}
		desc += " fields: " + strings.Join(names, ", ")
	}
	return desc
}

// listGenerators prints the registered generator names, for error paths
// where the user asked for one that does not exist.
func listGenerators(proj *project) {
	if proj.Registry.Len() == 0 {
		output.Info("No generators defined. Add YAML definitions under " + proj.Config.GeneratorsDir)
		return
	}
	output.Info("Available generators:")
	for _, def := range proj.Registry.All() {
		if def.Description != "" {
			output.Step(fmt.Sprintf("%s: %s", def.Name, def.Description))
		} else {
			output.Step(def.Name)
		}
	}
}
