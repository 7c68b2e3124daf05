package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/simonhull/lyrebird/internal/config"
	"github.com/simonhull/lyrebird/internal/marker"
	"github.com/simonhull/lyrebird/internal/output"
	"github.com/simonhull/lyrebird/internal/registry"
)

// project bundles what most commands need: the loaded config, the
// registry hydrated from the project's definition files, and a producer
// over that registry.
type project struct {
	Config   *config.Config
	Registry *registry.Registry
	Producer *marker.Producer
}

// openProject loads the project in dir. Broken definition files are
// reported as warnings and skipped; one bad generator never takes the
// whole CLI down.
func openProject(dir string) (*project, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	result, err := reg.LoadDir(cfg.GeneratorsDir)
	if err != nil {
		return nil, err
	}
	for _, f := range result.Failed {
		output.Warn(fmt.Sprintf("Skipping definition %s: %v", f.Path, f.Err))
	}
	output.Verbose(fmt.Sprintf("Loaded %d generator(s) from %s", len(result.Loaded), cfg.GeneratorsDir))

	return &project{
		Config:   cfg,
		Registry: reg,
		Producer: marker.NewProducer(reg),
	}, nil
}

// parseParams turns key=value arguments into the parameter map a
// generator consumes. Values for declared list params split on commas:
// bare items for scalar lists, field:value segments for structured ones,
// where a repeated field starts the next record. Repeating a list key
// appends; repeating a scalar key keeps the last value.
func parseParams(def *registry.Definition, args []string) (map[string]any, error) {
	specs := make(map[string]registry.ParamSpec, len(def.Params))
	for _, p := range def.Params {
		specs[p.Name] = p
	}

	params := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", arg)
		}

		if spec, declared := specs[key]; declared && spec.Kind == "list" {
			items, err := parseListValue(spec, value)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", key, err)
			}
			params[key] = appendItems(params[key], items)
			continue
		}
		params[key] = value
	}
	return params, nil
}

func parseListValue(spec registry.ParamSpec, value string) (any, error) {
	segments := make([]string, 0, 8)
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}

	if len(spec.Fields) == 0 {
		return segments, nil
	}

	known := make([]string, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		known = append(known, f.Name)
	}

	records := []map[string]string{}
	current := map[string]string{}
	for _, segment := range segments {
		field, v, ok := strings.Cut(segment, ":")
		if !ok {
			return nil, fmt.Errorf("expected field:value, got %q", segment)
		}
		field = strings.TrimSpace(field)
		if !slices.Contains(known, field) {
			return nil, fmt.Errorf("unknown field %q (declared: %s)", field, strings.Join(known, ", "))
		}
		if _, dup := current[field]; dup {
			records = append(records, current)
			current = map[string]string{}
		}
		current[field] = strings.TrimSpace(v)
	}
	if len(current) > 0 {
		records = append(records, current)
	}
	return records, nil
}

func appendItems(existing, items any) any {
	switch items := items.(type) {
	case []string:
		prev, _ := existing.([]string)
		return append(prev, items...)
	case []map[string]string:
		prev, _ := existing.([]map[string]string)
		return append(prev, items...)
	}
	return items
}

// splitPathAndParams peels an optional leading path off the raw argument
// list: paths never contain '=', parameters always do.
func splitPathAndParams(args []string) (path string, rest []string) {
	if len(args) > 0 && !strings.Contains(args[0], "=") {
		return args[0], args[1:]
	}
	return "", args
}

// targetPath decides where a generator writes: the explicit path when one
// was given, the definition's rendered output template otherwise.
func targetPath(def *registry.Definition, explicit string, params map[string]any) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, ok, err := def.OutputPath(params)
	if err != nil {
		return "", fmt.Errorf("rendering output path for %q: %w", def.Name, err)
	}
	if !ok {
		return "", fmt.Errorf("generator %q declares no output path; pass the target file explicitly", def.Name)
	}
	return path, nil
}
