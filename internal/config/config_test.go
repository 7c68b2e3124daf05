package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lyrebird.yml"), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "project: demo\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.ProjectName)
	assert.Equal(t, filepath.Join(dir, "lyrebird", "generators"), cfg.GeneratorsDir)
	assert.Equal(t, filepath.Join(dir, "lyrebird", "plan.yml"), cfg.PlanPath)
	assert.Empty(t, cfg.IgnoreGlobs)
}

func TestLoadExplicitValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `project: webapp
generators: tools/generators
plan: tools/plan.yml
sync:
  ignore:
    - "dist/**"
    - "coverage/**"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "webapp", cfg.ProjectName)
	assert.Equal(t, filepath.Join(dir, "tools", "generators"), cfg.GeneratorsDir)
	assert.Equal(t, filepath.Join(dir, "tools", "plan.yml"), cfg.PlanPath)
	assert.Equal(t, []string{"dist/**", "coverage/**"}, cfg.IgnoreGlobs)
}

func TestLoadKeepsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "plan.yml")
	writeConfig(t, dir, "plan: "+abs+"\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.PlanPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lyrebird.yml not found")
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "project: demo\n")
	t.Setenv("LYREBIRD_PLAN", "elsewhere/plan.yml")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "elsewhere", "plan.yml"), cfg.PlanPath)
}
