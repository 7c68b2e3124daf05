// Package manifest records planned generator calls and orders them by
// their declared dependencies. The plan is one YAML document; calls keep
// insertion order on disk and in memory.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	apiVersion = "lyrebird/v1"
	kindPlan   = "Plan"
)

// Call is one recorded generator invocation: which generator to run, with
// which parameters, into which file, and after which other calls.
type Call struct {
	ID        string         `yaml:"id"`
	Generator string         `yaml:"generator"`
	Params    map[string]any `yaml:"params,omitempty"`
	Output    string         `yaml:"output"`
	DependsOn []string       `yaml:"dependsOn,omitempty"`
	CreatedAt time.Time      `yaml:"createdAt"`
}

// NormalizedParams returns the call's parameters in the shape generators
// consume: scalars as strings, list items as []map[string]string or
// []string. Plans written by lyrebird already have this shape; hand-edited
// plans may carry bare YAML scalars, which normalization absorbs.
func (c Call) NormalizedParams() map[string]any {
	if c.Params == nil {
		return nil
	}

	out := make(map[string]any, len(c.Params))
	for name, value := range c.Params {
		switch v := value.(type) {
		case []any:
			out[name] = normalizeList(v)
		case []map[string]string, []string:
			out[name] = v
		default:
			out[name] = fmt.Sprint(v)
		}
	}
	return out
}

func normalizeList(items []any) any {
	structured := make([]map[string]string, 0, len(items))
	scalars := make([]string, 0, len(items))

	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			fields := make(map[string]string, len(m))
			for k, v := range m {
				fields[k] = fmt.Sprint(v)
			}
			structured = append(structured, fields)
			continue
		}
		scalars = append(scalars, fmt.Sprint(item))
	}

	if len(structured) > 0 {
		return structured
	}
	return scalars
}

// planDoc is the persisted shape of a plan file.
type planDoc struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Calls      []Call `yaml:"calls"`
}

// Store holds the plan's calls in insertion order. Mutations validate the
// dependency graph up front, so an invalid graph can never be persisted.
type Store struct {
	path  string
	calls []Call
	index map[string]int
}

// Load reads the plan at path. A missing or empty file is an empty plan,
// not an error.
func Load(path string) (*Store, error) {
	s := &Store{path: path, index: map[string]int{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(data) == 0) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}

	var doc planDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	if doc.APIVersion != apiVersion {
		return nil, &ValidationError{
			Field:   "apiVersion",
			Message: fmt.Sprintf("expected %q, got %q", apiVersion, doc.APIVersion),
		}
	}
	if doc.Kind != kindPlan {
		return nil, &ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("expected %q, got %q", kindPlan, doc.Kind),
		}
	}
	for _, call := range doc.Calls {
		if _, ok := s.index[call.ID]; ok {
			return nil, &AlreadyExistsError{ID: call.ID}
		}
		s.index[call.ID] = len(s.calls)
		s.calls = append(s.calls, call)
	}
	return s, nil
}

// Save writes the plan back to its path, creating parent directories.
func (s *Store) Save() error {
	doc := planDoc{APIVersion: apiVersion, Kind: kindPlan, Calls: s.calls}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", s.path, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing plan %s: %w", s.path, err)
	}
	return nil
}

// Path returns where the plan persists.
func (s *Store) Path() string {
	return s.path
}

// Add appends a call after validating it against the current graph. A new
// call's dependencies can only point at existing calls, so Add alone can
// never close a cycle.
func (s *Store) Add(call Call) error {
	if err := validateCall(call); err != nil {
		return err
	}
	if _, ok := s.index[call.ID]; ok {
		return &AlreadyExistsError{ID: call.ID}
	}
	if err := s.checkDeps(call); err != nil {
		return err
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}
	s.index[call.ID] = len(s.calls)
	s.calls = append(s.calls, call)
	return nil
}

// Update replaces the call with the same id, keeping its position.
// Updates can redirect dependencies backward and forward, so the whole
// graph is re-resolved; a cycle rolls the update back.
func (s *Store) Update(call Call) error {
	i, ok := s.index[call.ID]
	if !ok {
		return &NotFoundError{Kind: "call", Name: call.ID}
	}
	if err := validateCall(call); err != nil {
		return err
	}
	if err := s.checkDeps(call); err != nil {
		return err
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = s.calls[i].CreatedAt
	}

	prev := s.calls[i]
	s.calls[i] = call
	if _, err := Resolve(s.calls); err != nil {
		s.calls[i] = prev
		return err
	}
	return nil
}

// Get returns the call with the given id.
func (s *Store) Get(id string) (Call, bool) {
	i, ok := s.index[id]
	if !ok {
		return Call{}, false
	}
	return s.calls[i], true
}

// All returns the calls in insertion order. The slice is a copy; the
// backing calls are shared.
func (s *Store) All() []Call {
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Len returns the number of calls in the plan.
func (s *Store) Len() int {
	return len(s.calls)
}

func validateCall(call Call) error {
	switch {
	case call.ID == "":
		return &ValidationError{Field: "id", Message: "call id is required"}
	case call.Generator == "":
		return &ValidationError{Field: "generator", Message: "generator name is required"}
	case call.Output == "":
		return &ValidationError{Field: "output", Message: "output path is required"}
	}
	return nil
}

func (s *Store) checkDeps(call Call) error {
	for _, dep := range call.DependsOn {
		if dep == call.ID {
			return &ValidationError{
				Field:   "dependsOn",
				Message: fmt.Sprintf("call %q cannot depend on itself", call.ID),
			}
		}
		if _, ok := s.index[dep]; !ok {
			return &NotFoundError{Kind: "dependency", Name: dep}
		}
	}
	return nil
}
