package registry

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/simonhull/lyrebird/internal/extract"
	"github.com/simonhull/lyrebird/internal/render"
)

// RenderFunc renders generator output from a parameter map. It must be
// referentially transparent: identical parameters always yield
// byte-identical output. That purity is what makes the extract/regenerate
// loop deterministic.
type RenderFunc func(params map[string]any) (string, error)

// ParamSpec declares one parameter a generator accepts.
type ParamSpec struct {
	Name     string      `yaml:"name"`
	Kind     string      `yaml:"kind,omitempty"` // string, identifier, number, list
	Required bool        `yaml:"required,omitempty"`
	Fields   []FieldSpec `yaml:"fields,omitempty"` // item fields, list params only
}

// FieldSpec declares one item field of a list parameter.
type FieldSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind,omitempty"` // string, number
}

// Definition is one registered generator. It is a closed variant: a
// definition is backed either by a template or by an opaque render
// function, never both. Template-backed definitions can be synced, since
// their raw template is available for extraction; opaque ones cannot.
type Definition struct {
	Name        string
	Description string
	Output      string // default output path template (optional)
	Params      []ParamSpec

	template string
	fn       RenderFunc
	renderer *render.Renderer
}

// FromTemplate builds a template-backed definition.
func FromTemplate(name, description, template string, params ...ParamSpec) *Definition {
	return &Definition{
		Name:        name,
		Description: description,
		Params:      params,
		template:    template,
	}
}

// FromFunc builds an opaque definition that renders through fn.
func FromFunc(name, description string, fn RenderFunc, params ...ParamSpec) *Definition {
	return &Definition{
		Name:        name,
		Description: description,
		Params:      params,
		fn:          fn,
	}
}

// Render produces the generator's output for params.
func (d *Definition) Render(params map[string]any) (string, error) {
	if d.fn != nil {
		return d.fn(params)
	}
	if d.renderer == nil {
		d.renderer = render.New()
	}
	out, err := d.renderer.RenderString(d.Name, d.template, params)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RawTemplate returns the backing template. ok is false for opaque
// definitions.
func (d *Definition) RawTemplate() (string, bool) {
	if d.template == "" {
		return "", false
	}
	return d.template, true
}

// OutputPath renders the definition's declared output path template with
// params, so callers can omit the target path on the command line. ok is
// false when the definition declares no output.
func (d *Definition) OutputPath(params map[string]any) (path string, ok bool, err error) {
	if d.Output == "" {
		return "", false, nil
	}
	if d.renderer == nil {
		d.renderer = render.New()
	}
	out, err := d.renderer.RenderString(d.Name+":output", d.Output, params)
	if err != nil {
		return "", true, err
	}
	return string(out), true, nil
}

// ExtractOptions translates declared parameter kinds into extraction
// options. Only number declarations change anything: scalar hints are
// otherwise inferred from the template line, and list fields default to
// string.
func (d *Definition) ExtractOptions() extract.Options {
	var opts extract.Options
	for _, p := range d.Params {
		switch p.Kind {
		case "number":
			if opts.ParamKinds == nil {
				opts.ParamKinds = make(map[string]extract.Kind)
			}
			opts.ParamKinds[p.Name] = extract.KindNumber
		case "list":
			for _, f := range p.Fields {
				if f.Kind != "number" {
					continue
				}
				if opts.FieldKinds == nil {
					opts.FieldKinds = make(map[string]extract.Kind)
				}
				opts.FieldKinds[p.Name+"."+f.Name] = extract.KindNumber
			}
		}
	}
	return opts
}

// ValidateParams checks a parameter map against the declared specs before
// rendering. Definitions without declared params accept anything.
func (d *Definition) ValidateParams(params map[string]any) error {
	if len(d.Params) == 0 {
		return nil
	}

	declared := make(map[string]ParamSpec, len(d.Params))
	var errs ValidationErrors

	for _, p := range d.Params {
		declared[p.Name] = p
		value, ok := params[p.Name]
		if !ok {
			if p.Required {
				errs = append(errs, ValidationError{
					Field:      p.Name,
					Message:    "required parameter is missing",
					Suggestion: fmt.Sprintf("pass %s=<value>", p.Name),
				})
			}
			continue
		}
		if p.Kind == "number" {
			s, isStr := value.(string)
			if !isStr || !isDigits(s) {
				errs = append(errs, ValidationError{
					Field:      p.Name,
					Message:    fmt.Sprintf("expected a number, got %v", value),
					Suggestion: "number parameters take digits only",
				})
			}
		}
	}

	unknown := make([]string, 0, len(params))
	for name := range params {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = append(errs, ValidationError{
			Field:      name,
			Message:    fmt.Sprintf("unknown parameter for generator %q", d.Name),
			Suggestion: "check the generator's declared params",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
