// Package config loads the project-level lyrebird.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the project configuration. Paths are resolved against the
// project directory, so callers can use them directly.
type Config struct {
	ProjectName   string
	GeneratorsDir string
	PlanPath      string
	IgnoreGlobs   []string
}

// Load reads lyrebird.yml from dir. Environment variables prefixed
// LYREBIRD_ override file values, with dots becoming underscores
// (LYREBIRD_PLAN overrides plan).
func Load(dir string) (*Config, error) {
	if _, err := os.Stat(filepath.Join(dir, "lyrebird.yml")); os.IsNotExist(err) {
		return nil, fmt.Errorf("lyrebird.yml not found in %s. Are you in a lyrebird project directory?", dir)
	}

	v := viper.New()
	v.SetConfigName("lyrebird")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.AutomaticEnv()
	v.SetEnvPrefix("LYREBIRD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("generators", "lyrebird/generators")
	v.SetDefault("plan", "lyrebird/plan.yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading lyrebird.yml: %w", err)
	}

	return &Config{
		ProjectName:   v.GetString("project"),
		GeneratorsDir: resolve(dir, v.GetString("generators")),
		PlanPath:      resolve(dir, v.GetString("plan")),
		IgnoreGlobs:   v.GetStringSlice("sync.ignore"),
	}, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
