// Package registry maps generator names to validated definitions. A
// Registry is an explicit instance: callers construct one and pass it by
// reference, there is no ambient global.
package registry

import (
	"fmt"

	"github.com/simonhull/lyrebird/internal/extract"
	"github.com/simonhull/lyrebird/internal/render"
)

// Registry holds registered generator definitions in insertion order.
type Registry struct {
	renderer *render.Renderer
	defs     map[string]*Definition
	order    []string
}

// New returns an empty Registry with a shared template renderer.
func New() *Registry {
	return &Registry{
		renderer: render.New(),
		defs:     make(map[string]*Definition),
	}
}

// Register validates def and adds it. Validation failures come back as
// ValidationErrors; a duplicate name is an AlreadyExistsError.
func (r *Registry) Register(def *Definition) error {
	if errs := validate(def); len(errs) > 0 {
		return errs
	}
	if _, dup := r.defs[def.Name]; dup {
		return &AlreadyExistsError{Name: def.Name}
	}

	if def.renderer == nil {
		def.renderer = r.renderer
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Resolve returns the definition registered under name.
func (r *Registry) Resolve(name string) (*Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return def, nil
}

// All returns every definition in registration order.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Len reports how many definitions are registered.
func (r *Registry) Len() int {
	return len(r.order)
}

var paramKinds = map[string]bool{
	"":           true,
	"string":     true,
	"identifier": true,
	"number":     true,
	"list":       true,
}

var fieldKinds = map[string]bool{
	"":       true,
	"string": true,
	"number": true,
}

// validate enforces the definition variant at registration time: a name,
// exactly one backing (template or render function), and well-formed
// parameter specs. Template-backed definitions must also analyze cleanly.
func validate(def *Definition) ValidationErrors {
	var errs ValidationErrors

	if def.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if !isGeneratorName(def.Name) {
		errs = append(errs, ValidationError{
			Field:      "name",
			Message:    fmt.Sprintf("invalid generator name %q", def.Name),
			Suggestion: "use lowercase letters, digits, '-' and '_', like 'ts-model'",
		})
	}

	hasTemplate := def.template != ""
	hasFn := def.fn != nil
	switch {
	case hasTemplate && hasFn:
		errs = append(errs, ValidationError{
			Field:   "spec",
			Message: "definition carries both a template and a render function",
		})
	case !hasTemplate && !hasFn:
		errs = append(errs, ValidationError{
			Field:      "spec",
			Message:    "definition carries neither a template nor a render function",
			Suggestion: "set spec.template or spec.templateFile",
		})
	case hasTemplate:
		if _, err := extract.Analyze(def.template, extract.Options{}); err != nil {
			errs = append(errs, ValidationError{
				Field:   "spec.template",
				Message: err.Error(),
			})
		}
	}

	seen := make(map[string]bool, len(def.Params))
	for i, p := range def.Params {
		path := fmt.Sprintf("spec.params[%d]", i)
		if p.Name == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: "param name is required",
			})
		} else if seen[p.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate param %q", p.Name),
			})
		}
		seen[p.Name] = true

		if !paramKinds[p.Kind] {
			errs = append(errs, ValidationError{
				Field:      path + ".kind",
				Message:    fmt.Sprintf("unknown kind %q", p.Kind),
				Suggestion: "use string, identifier, number, or list",
			})
		}
		if len(p.Fields) > 0 && p.Kind != "list" {
			errs = append(errs, ValidationError{
				Field:      path + ".fields",
				Message:    "fields are only valid on list params",
				Suggestion: "set kind: list",
			})
		}

		seenFields := make(map[string]bool, len(p.Fields))
		for j, f := range p.Fields {
			fpath := fmt.Sprintf("%s.fields[%d]", path, j)
			if f.Name == "" {
				errs = append(errs, ValidationError{
					Field:   fpath + ".name",
					Message: "field name is required",
				})
			} else if seenFields[f.Name] {
				errs = append(errs, ValidationError{
					Field:   fpath + ".name",
					Message: fmt.Sprintf("duplicate field %q", f.Name),
				})
			}
			seenFields[f.Name] = true

			if !fieldKinds[f.Kind] {
				errs = append(errs, ValidationError{
					Field:      fpath + ".kind",
					Message:    fmt.Sprintf("unknown kind %q", f.Kind),
					Suggestion: "use string or number",
				})
			}
		}
	}

	return errs
}

// isGeneratorName reports whether s is a valid generator name: lowercase
// letters, digits, '-' and '_', starting with a letter.
func isGeneratorName(s string) bool {
	if s == "" {
		return false
	}
	if s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}
