package marker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/simonhull/lyrebird/internal/extract"
	"github.com/simonhull/lyrebird/internal/registry"
)

// Producer drives the lifecycle of generation units: Create writes a fresh
// unit, Sync regenerates an existing one from its hand-edited body. Every
// operation is a single sequential read-modify-write; concurrent edits to
// the same file are not synchronized and can be lost.
type Producer struct {
	registry *registry.Registry
}

// NewProducer builds a Producer over reg.
func NewProducer(reg *registry.Registry) *Producer {
	return &Producer{registry: reg}
}

// Render resolves generator, validates params, and returns the fully
// wrapped unit text for path's dialect. It touches no files.
func (p *Producer) Render(path, unitID, generator string, params map[string]any) (string, error) {
	dialect, err := DialectFor(path)
	if err != nil {
		return "", err
	}
	def, err := p.registry.Resolve(generator)
	if err != nil {
		return "", err
	}
	if err := def.ValidateParams(params); err != nil {
		return "", err
	}
	body, err := def.Render(params)
	if err != nil {
		return "", fmt.Errorf("rendering %q: %w", generator, err)
	}
	if unitID == "" {
		unitID = generator
	}
	return dialect.Wrap(unitID, generator, body), nil
}

// Create writes a new generation unit to path. An absent or empty file
// gets the wrapped unit as its whole content, parent directories included.
// A file already holding the same unit is regenerated in place. Anything
// else is an AlreadyExistsError: Create never touches content it does not
// own.
func (p *Producer) Create(path, unitID, generator string, params map[string]any) error {
	if unitID == "" {
		unitID = generator
	}
	wrapped, err := p.Render(path, unitID, generator, params)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if len(data) == 0 {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", path, err)
			}
		}
		return writeFile(path, wrapped+"\n")
	}

	content := string(data)
	region, err := Locate(path, content)
	var noMarker *NoMarkerError
	switch {
	case errors.As(err, &noMarker):
		return &AlreadyExistsError{Path: path, Reason: "file holds content without generation unit markers"}
	case err != nil:
		return err
	}
	if region.UnitID != unitID {
		return &AlreadyExistsError{
			Path:   path,
			Reason: fmt.Sprintf("file holds unit %q, not %q", region.UnitID, unitID),
		}
	}
	return writeFile(path, splice(content, region, wrapped))
}

// Replace renders the unit and writes it as path's entire content, no
// matter what the file held before. It backs an explicit overwrite
// decision; Create is the collision-safe path.
func (p *Producer) Replace(path, unitID, generator string, params map[string]any) error {
	wrapped, err := p.Render(path, unitID, generator, params)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}
	return writeFile(path, wrapped+"\n")
}

// Materialize brings one planned unit up to date: Create when path holds
// no unit yet, Sync when it already holds this unit. The returned action
// is "create" or "sync". A unit with a different id is a collision, same
// as for Create.
func (p *Producer) Materialize(path, unitID, generator string, params map[string]any) (string, error) {
	if unitID == "" {
		unitID = generator
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if !HasMarker(string(data)) {
		return "create", p.Create(path, unitID, generator, params)
	}

	region, err := Locate(path, string(data))
	if err != nil {
		return "", err
	}
	if region.UnitID != unitID {
		return "", &AlreadyExistsError{
			Path:   path,
			Reason: fmt.Sprintf("file holds unit %q, not %q", region.UnitID, unitID),
		}
	}
	return "sync", p.Sync(path)
}

// Sync regenerates the unit in path from its current body: the parameters
// are extracted from the hand-edited text between the sentinels, the
// generator is re-invoked with them, and exactly the sentinel-delimited
// region is replaced. Bytes outside the region are copied through
// untouched. The file is written once, at the end; any earlier failure
// leaves it as it was.
func (p *Producer) Sync(path string) error {
	_, updated, err := p.SyncPreview(path)
	if err != nil {
		return err
	}
	return writeFile(path, string(updated))
}

// SyncPreview computes what Sync would write without writing it. It
// returns the file's current content alongside the regenerated content.
func (p *Producer) SyncPreview(path string) (current, updated []byte, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	content := string(data)

	region, err := Locate(path, content)
	if err != nil {
		return nil, nil, err
	}
	def, err := p.registry.Resolve(region.Generator)
	if err != nil {
		return nil, nil, err
	}
	tmpl, ok := def.RawTemplate()
	if !ok {
		return nil, nil, &NoTemplateError{Generator: region.Generator}
	}

	params, err := extract.Extract(tmpl, region.Body(content), def.ExtractOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("extracting parameters from %s: %w", path, err)
	}
	body, err := def.Render(params)
	if err != nil {
		return nil, nil, fmt.Errorf("rendering %q: %w", region.Generator, err)
	}
	dialect, err := DialectFor(path)
	if err != nil {
		return nil, nil, err
	}

	wrapped := dialect.Wrap(region.UnitID, region.Generator, body)
	return data, []byte(splice(content, region, wrapped)), nil
}

// SyncOptions tunes a SyncAll pass.
type SyncOptions struct {
	// IgnoreGlobs are doublestar patterns matched against each file's
	// slash-separated path relative to the walk root.
	IgnoreGlobs []string
}

// Report summarizes one SyncAll pass.
type Report struct {
	Synced []string
	Failed []FileError
}

// FileError is one file whose sync failed and the reason it did.
type FileError struct {
	Path string
	Err  error
}

// Ok reports whether every attempted sync succeeded.
func (r *Report) Ok() bool {
	return len(r.Failed) == 0
}

// Directories nobody generates into. Hidden directories are skipped as
// well.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"bin":          true,
	"tmp":          true,
	"temp":         true,
}

// SyncAll walks root and attempts Sync on every file whose content holds a
// begin marker. Files outside the dialect table, inside skipped
// directories, or matching opts.IgnoreGlobs are never touched. Per-file
// failures go into the report; they never abort the walk, and failed files
// are left exactly as they were.
func (p *Producer) SyncAll(root string, opts SyncOptions) (*Report, error) {
	report := &Report{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, err := DialectFor(path); err != nil {
			return nil
		}
		if ignored(root, path, opts.IgnoreGlobs) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			report.Failed = append(report.Failed, FileError{Path: path, Err: err})
			return nil
		}
		if !HasMarker(string(data)) {
			return nil
		}
		if err := p.Sync(path); err != nil {
			report.Failed = append(report.Failed, FileError{Path: path, Err: err})
			return nil
		}
		report.Synced = append(report.Synced, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return report, nil
}

func ignored(root, path string, globs []string) bool {
	if len(globs) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, glob := range globs {
		if ok, err := doublestar.Match(glob, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// splice replaces the region in content with wrapped, preserving every
// byte outside it.
func splice(content string, region *Region, wrapped string) string {
	return content[:region.Start] + wrapped + content[region.End:]
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
