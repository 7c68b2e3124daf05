package render

import (
	"embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/*.tmpl
var testTemplates embed.FS

func TestRenderString(t *testing.T) {
	r := New()

	out, err := r.RenderString("const", "export const {{.name}} = {{.value}};",
		map[string]any{"name": "port", "value": 8080})
	require.NoError(t, err)
	assert.Equal(t, "export const port = 8080;", string(out))
}

func TestRenderStringParseError(t *testing.T) {
	r := New()

	_, err := r.RenderString("broken", "{{.name", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `parsing template "broken"`)
}

func TestRenderStringExecuteError(t *testing.T) {
	r := New()

	_, err := r.RenderString("boom", "{{.a.b}}", map[string]any{"a": "not a map"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rendering template "boom"`)
}

func TestRenderStringCachesByName(t *testing.T) {
	r := New()

	first, err := r.RenderString("cached", "one", nil)
	require.NoError(t, err)
	second, err := r.RenderString("cached", "two", nil)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "same name hits the cache")

	r.ClearCache()
	third, err := r.RenderString("cached", "two", nil)
	require.NoError(t, err)
	assert.Equal(t, "two", string(third))
}

func TestRenderFS(t *testing.T) {
	r := New()

	out, err := r.RenderFS(testTemplates, "testdata/greeting.tmpl",
		map[string]any{"name": "wren"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, wren!\n", string(out))
}

func TestRenderFSMissing(t *testing.T) {
	r := New()

	_, err := r.RenderFS(testTemplates, "testdata/nope.tmpl", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading embedded template")
}

func TestRenderFile(t *testing.T) {
	r := New()
	path := filepath.Join(t.TempDir(), "list.tmpl")
	require.NoError(t, os.WriteFile(path,
		[]byte("{{range .items}}- {{.}}\n{{end}}"), 0o644))

	out, err := r.RenderFile(path, map[string]any{"items": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "- a\n- b\n", string(out))
}

func TestRenderFileMissing(t *testing.T) {
	r := New()

	_, err := r.RenderFile(filepath.Join(t.TempDir(), "nope.tmpl"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading template file")
}

func TestRenderHelpersAvailable(t *testing.T) {
	r := New()

	out, err := r.RenderString("helpers",
		"{{pascalCase .a}} {{camelCase .b}} {{plural .c}} {{quote .d}}",
		map[string]any{"a": "user_id", "b": "UserName", "c": "category", "d": "x"})
	require.NoError(t, err)
	assert.Equal(t, `UserID userName categories "x"`, string(out))
}

func TestRenderDeterministic(t *testing.T) {
	r := New()
	data := map[string]any{"name": "stable"}

	first, err := r.RenderString("det", "value: {{.name}}", data)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := r.RenderString("det", "value: {{.name}}", data)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
