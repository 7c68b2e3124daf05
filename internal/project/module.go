// Package project inspects the directory a lyrebird command runs in.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Module describes the Go module a project lives in, when there is one.
// Lyrebird itself is language-agnostic; the module path is only used to
// pick sensible defaults.
type Module struct {
	Path      string
	GoVersion string
}

// FindModule parses go.mod in dir. It returns an error when the file is
// missing or malformed.
func FindModule(dir string) (*Module, error) {
	modPath := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(modPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("go.mod not found in %s", dir)
		}
		return nil, fmt.Errorf("reading go.mod: %w", err)
	}

	mf, err := modfile.Parse(modPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing go.mod: %w", err)
	}
	if mf.Module == nil || mf.Module.Mod.Path == "" {
		return nil, fmt.Errorf("go.mod in %s has no module directive", dir)
	}

	mod := &Module{Path: mf.Module.Mod.Path}
	if mf.Go != nil {
		mod.GoVersion = mf.Go.Version
	}
	return mod, nil
}

// DefaultName guesses a project name for dir: the last element of the Go
// module path when go.mod is present, the directory's own name otherwise.
func DefaultName(dir string) string {
	if mod, err := FindModule(dir); err == nil {
		return filepath.Base(mod.Path)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(dir)
	}
	return filepath.Base(abs)
}
