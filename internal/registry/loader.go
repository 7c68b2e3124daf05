package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	fileAPIVersion = "lyrebird/v1"
	fileKind       = "Generator"
)

// definitionFile is the on-disk shape of a generator definition.
type definitionFile struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Name       string   `yaml:"name"`
	Spec       specNode `yaml:"spec"`
}

type specNode struct {
	Description  string      `yaml:"description,omitempty"`
	Output       string      `yaml:"output,omitempty"`
	Params       []ParamSpec `yaml:"params,omitempty"`
	Template     string      `yaml:"template,omitempty"`
	TemplateFile string      `yaml:"templateFile,omitempty"`
}

// Parse reads and validates one generator definition file. Relative
// templateFile paths are resolved against the definition's directory and
// read eagerly, so a missing template file fails here, not at render time.
func Parse(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition %s: %w", path, err)
	}
	return parseBytes(data, filepath.Dir(path))
}

func parseBytes(data []byte, baseDir string) (*Definition, error) {
	// First pass: node API, for line numbers in validation errors.
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	lines := make(map[string]int)
	extractLineNumbers(&root, "", lines)

	// Second pass: strict decode, so unknown or misplaced fields fail
	// instead of being dropped.
	var file definitionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing definition (check for unknown or misspelled fields): %w", err)
	}

	if errs := validateFile(&file, lines); len(errs) > 0 {
		return nil, errs
	}

	template := file.Spec.Template
	if file.Spec.TemplateFile != "" {
		raw, err := os.ReadFile(filepath.Join(baseDir, file.Spec.TemplateFile))
		if err != nil {
			return nil, fmt.Errorf("reading templateFile %q: %w", file.Spec.TemplateFile, err)
		}
		template = string(raw)
	}

	def := FromTemplate(file.Name, file.Spec.Description, template, file.Spec.Params...)
	def.Output = file.Spec.Output
	return def, nil
}

func validateFile(file *definitionFile, lines map[string]int) ValidationErrors {
	var errs ValidationErrors

	switch {
	case file.APIVersion == "":
		errs = append(errs, ValidationError{
			Field:      "apiVersion",
			Message:    "apiVersion is required",
			Suggestion: "use 'lyrebird/v1'",
			Line:       lines["apiVersion"],
		})
	case file.APIVersion != fileAPIVersion:
		errs = append(errs, ValidationError{
			Field:      "apiVersion",
			Message:    fmt.Sprintf("invalid apiVersion %q", file.APIVersion),
			Suggestion: "use 'lyrebird/v1'",
			Line:       lines["apiVersion"],
		})
	}

	switch {
	case file.Kind == "":
		errs = append(errs, ValidationError{
			Field:      "kind",
			Message:    "kind is required",
			Suggestion: "use 'Generator'",
			Line:       lines["kind"],
		})
	case file.Kind != fileKind:
		errs = append(errs, ValidationError{
			Field:      "kind",
			Message:    fmt.Sprintf("invalid kind %q", file.Kind),
			Suggestion: "use 'Generator'",
			Line:       lines["kind"],
		})
	}

	switch {
	case file.Name == "":
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name is required",
			Line:    lines["name"],
		})
	case !isGeneratorName(file.Name):
		errs = append(errs, ValidationError{
			Field:      "name",
			Message:    fmt.Sprintf("invalid generator name %q", file.Name),
			Suggestion: "use lowercase letters, digits, and dashes, starting with a letter",
			Line:       lines["name"],
		})
	}

	hasInline := file.Spec.Template != ""
	hasFile := file.Spec.TemplateFile != ""
	switch {
	case hasInline && hasFile:
		errs = append(errs, ValidationError{
			Field:      "spec.template",
			Message:    "template and templateFile are mutually exclusive",
			Suggestion: "keep exactly one of them",
			Line:       lines["spec.template"],
		})
	case !hasInline && !hasFile:
		errs = append(errs, ValidationError{
			Field:      "spec",
			Message:    "definition needs template or templateFile",
			Suggestion: "add an inline template or point templateFile at one",
			Line:       lines["spec"],
		})
	}

	for i, p := range file.Spec.Params {
		paramPath := fmt.Sprintf("spec.params[%d]", i)
		if p.Name == "" {
			errs = append(errs, ValidationError{
				Field:   paramPath + ".name",
				Message: "param name is required",
				Line:    lines[fmt.Sprintf("spec.params.%d", i)],
			})
		}
		if p.Kind != "" && !paramKinds[p.Kind] {
			errs = append(errs, ValidationError{
				Field:      paramPath + ".kind",
				Message:    fmt.Sprintf("unknown param kind %q", p.Kind),
				Suggestion: "use string, identifier, number, or list",
				Line:       lines[fmt.Sprintf("spec.params.%d.kind", i)],
			})
		}
		if len(p.Fields) > 0 && p.Kind != "list" {
			errs = append(errs, ValidationError{
				Field:      paramPath + ".fields",
				Message:    "fields are only valid on list params",
				Suggestion: "set kind: list or drop the fields",
				Line:       lines[fmt.Sprintf("spec.params.%d.fields", i)],
			})
		}
		for j, f := range p.Fields {
			fieldPath := fmt.Sprintf("%s.fields[%d]", paramPath, j)
			if f.Name == "" {
				errs = append(errs, ValidationError{
					Field:   fieldPath + ".name",
					Message: "field name is required",
					Line:    lines[fmt.Sprintf("spec.params.%d.fields.%d", i, j)],
				})
			}
			if f.Kind != "" && !fieldKinds[f.Kind] {
				errs = append(errs, ValidationError{
					Field:      fieldPath + ".kind",
					Message:    fmt.Sprintf("unknown field kind %q", f.Kind),
					Suggestion: "use string or number",
					Line:       lines[fmt.Sprintf("spec.params.%d.fields.%d.kind", i, j)],
				})
			}
		}
	}

	return errs
}

// extractLineNumbers walks the YAML node tree and records the line of
// every value, keyed by its dotted path (sequence elements by index).
func extractLineNumbers(node *yaml.Node, path string, lines map[string]int) {
	if node == nil {
		return
	}
	if path != "" {
		lines[path] = node.Line
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) > 0 {
			extractLineNumbers(node.Content[0], path, lines)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			child := key
			if path != "" {
				child = path + "." + key
			}
			extractLineNumbers(node.Content[i+1], child, lines)
		}
	case yaml.SequenceNode:
		for i, child := range node.Content {
			extractLineNumbers(child, fmt.Sprintf("%s.%d", path, i), lines)
		}
	}
}

// LoadResult reports one directory load.
type LoadResult struct {
	Loaded []string
	Failed []FileError
}

// FileError pairs a definition file with its parse or registration error.
type FileError struct {
	Path string
	Err  error
}

// LoadDir parses every .yml/.yaml file directly under dir and registers
// the definitions, in name order. Failures are collected per file; one
// broken definition never blocks the rest.
func (r *Registry) LoadDir(dir string) (*LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading definitions directory %s: %w", dir, err)
	}

	result := &LoadResult{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		def, err := Parse(path)
		if err != nil {
			result.Failed = append(result.Failed, FileError{Path: path, Err: err})
			continue
		}
		if err := r.Register(def); err != nil {
			result.Failed = append(result.Failed, FileError{Path: path, Err: err})
			continue
		}
		result.Loaded = append(result.Loaded, def.Name)
	}
	return result, nil
}
