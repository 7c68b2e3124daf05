// Package scaffold lays down the files lyrebird init creates: the project
// config, a pair of starter generator definitions, and an empty plan.
package scaffold

import (
	"embed"
	"path/filepath"

	"github.com/simonhull/lyrebird/internal/render"
)

//go:embed templates
var templatesFS embed.FS

// staticFiles are copied into a new project as-is. Their template actions
// belong to the generators and must stay unexecuted here.
var staticFiles = []struct {
	src string
	dst string
}{
	{"templates/generators/ts-interface.yml", filepath.Join("lyrebird", "generators", "ts-interface.yml")},
	{"templates/generators/ts-const.yml", filepath.Join("lyrebird", "generators", "ts-const.yml")},
	{"templates/plan.yml", filepath.Join("lyrebird", "plan.yml")},
}

// Project builds the operations that scaffold a lyrebird project named
// project under dir.
func Project(dir, project string) ([]Operation, error) {
	renderer := render.New()

	config, err := renderer.RenderFS(templatesFS, "templates/lyrebird.yml.tmpl", map[string]any{
		"project": project,
	})
	if err != nil {
		return nil, err
	}

	ops := []Operation{
		&WriteFileOp{Path: filepath.Join(dir, "lyrebird.yml"), Content: config, Mode: 0o644},
	}

	for _, f := range staticFiles {
		content, err := templatesFS.ReadFile(f.src)
		if err != nil {
			return nil, err
		}
		ops = append(ops, &WriteFileOp{
			Path:    filepath.Join(dir, f.dst),
			Content: content,
			Mode:    0o644,
		})
	}

	return ops, nil
}
