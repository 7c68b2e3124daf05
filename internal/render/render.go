// Package render wraps text/template with the helper functions lyrebird
// generators rely on. Helpers are pure: identical data always renders to
// byte-identical output, which is what keeps extraction and regeneration
// in lockstep.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"sync"
	"text/template"
)

// Renderer parses and executes templates, caching parsed templates by
// origin so repeated renders of the same definition stay cheap.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// New returns a Renderer with the built-in helper functions.
func New() *Renderer {
	return &Renderer{
		funcMap: Helpers(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderString renders an inline template. The name keys the cache and
// shows up in error messages.
func (r *Renderer) RenderString(name, templateStr string, data any) ([]byte, error) {
	if tmpl, ok := r.cached("string", name); ok {
		return r.execute(tmpl, data)
	}

	tmpl, err := template.New(name).Funcs(r.funcMap).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", name, err)
	}

	r.store("string", name, tmpl)
	return r.execute(tmpl, data)
}

// RenderFS renders a template from an embedded filesystem.
func (r *Renderer) RenderFS(fsys embed.FS, path string, data any) ([]byte, error) {
	if tmpl, ok := r.cached("fs", path); ok {
		return r.execute(tmpl, data)
	}

	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading embedded template %q: %w", path, err)
	}

	tmpl, err := template.New(path).Funcs(r.funcMap).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", path, err)
	}

	r.store("fs", path, tmpl)
	return r.execute(tmpl, data)
}

// RenderFile renders a template read from disk, used for definitions that
// point at a templateFile instead of an inline template.
func (r *Renderer) RenderFile(path string, data any) ([]byte, error) {
	if tmpl, ok := r.cached("file", path); ok {
		return r.execute(tmpl, data)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file %q: %w", path, err)
	}

	tmpl, err := template.New(path).Funcs(r.funcMap).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", path, err)
	}

	r.store("file", path, tmpl)
	return r.execute(tmpl, data)
}

// ClearCache drops all cached templates.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}

func (r *Renderer) cached(kind, key string) (*template.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.cache[kind+":"+key]
	return tmpl, ok
}

func (r *Renderer) store(kind, key string, tmpl *template.Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[kind+":"+key] = tmpl
}

func (r *Renderer) execute(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template %q: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}
