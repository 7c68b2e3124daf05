package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseInlineTemplate(t *testing.T) {
	path := writeDefinition(t, t.TempDir(), "ts-const.yml", `apiVersion: lyrebird/v1
kind: Generator
name: ts-const
spec:
  description: a single exported constant
  output: src/consts/{{.name}}.ts
  params:
    - name: name
      kind: identifier
      required: true
    - name: value
      kind: string
  template: "export const {{.name}} = '{{.value}}';"
`)

	def, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "ts-const", def.Name)
	assert.Equal(t, "a single exported constant", def.Description)
	assert.Equal(t, "src/consts/{{.name}}.ts", def.Output)
	require.Len(t, def.Params, 2)
	assert.Equal(t, "name", def.Params[0].Name)
	assert.True(t, def.Params[0].Required)

	tmpl, ok := def.RawTemplate()
	require.True(t, ok)
	assert.Equal(t, "export const {{.name}} = '{{.value}}';", tmpl)
}

func TestParseListParam(t *testing.T) {
	path := writeDefinition(t, t.TempDir(), "ts-interface.yml", `apiVersion: lyrebird/v1
kind: Generator
name: ts-interface
spec:
  params:
    - name: name
      kind: identifier
      required: true
    - name: fields
      kind: list
      fields:
        - name: name
        - name: type
  template: |
    export interface {{.name}} {
    {{range .fields}}  {{.name}}: {{.type}};
    {{end}}}
`)

	def, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, def.Params, 2)
	assert.Equal(t, "list", def.Params[1].Kind)
	require.Len(t, def.Params[1].Fields, 2)
	assert.Equal(t, "type", def.Params[1].Fields[1].Name)
}

func TestParseTemplateFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "const.tmpl"),
		[]byte("export const {{.name}} = '{{.value}}';"), 0o644))
	path := writeDefinition(t, dir, "ts-const.yml", `apiVersion: lyrebird/v1
kind: Generator
name: ts-const
spec:
  templateFile: const.tmpl
`)

	def, err := Parse(path)
	require.NoError(t, err)

	tmpl, ok := def.RawTemplate()
	require.True(t, ok)
	assert.Contains(t, tmpl, "export const")
}

func TestParseTemplateFileMissing(t *testing.T) {
	path := writeDefinition(t, t.TempDir(), "gen.yml", `apiVersion: lyrebird/v1
kind: Generator
name: gen
spec:
  templateFile: nowhere.tmpl
`)

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere.tmpl")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	path := writeDefinition(t, t.TempDir(), "gen.yml", `apiVersion: lyrebird/v1
kind: Generator
name: gen
spec:
  template: "{{.a}}"
  outputs: src/a.ts
`)

	_, err := Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown or misspelled fields")
}

func TestParseValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name: "wrong apiVersion",
			content: `apiVersion: lyrebird/v2
kind: Generator
name: gen
spec:
  template: "{{.a}}"
`,
			field: "apiVersion",
		},
		{
			name: "wrong kind",
			content: `apiVersion: lyrebird/v1
kind: Resource
name: gen
spec:
  template: "{{.a}}"
`,
			field: "kind",
		},
		{
			name: "missing name",
			content: `apiVersion: lyrebird/v1
kind: Generator
spec:
  template: "{{.a}}"
`,
			field: "name",
		},
		{
			name: "both template and templateFile",
			content: `apiVersion: lyrebird/v1
kind: Generator
name: gen
spec:
  template: "{{.a}}"
  templateFile: a.tmpl
`,
			field: "spec.template",
		},
		{
			name: "neither template nor templateFile",
			content: `apiVersion: lyrebird/v1
kind: Generator
name: gen
spec:
  description: nothing to render
`,
			field: "spec",
		},
		{
			name: "bad param kind",
			content: `apiVersion: lyrebird/v1
kind: Generator
name: gen
spec:
  params:
    - name: a
      kind: integer
  template: "{{.a}}"
`,
			field: "spec.params[0].kind",
		},
		{
			name: "fields on scalar param",
			content: `apiVersion: lyrebird/v1
kind: Generator
name: gen
spec:
  params:
    - name: a
      kind: string
      fields:
        - name: x
  template: "{{.a}}"
`,
			field: "spec.params[0].fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDefinition(t, t.TempDir(), "gen.yml", tt.content)

			_, err := Parse(path)

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)

			fields := make([]string, len(errs))
			for i, e := range errs {
				fields[i] = e.Field
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestParseValidationErrorCarriesLine(t *testing.T) {
	path := writeDefinition(t, t.TempDir(), "gen.yml", `apiVersion: lyrebird/v2
kind: Generator
name: gen
spec:
  template: "{{.a}}"
`)

	_, err := Parse(path)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.NotEmpty(t, errs)
	assert.Equal(t, "apiVersion", errs[0].Field)
	assert.Equal(t, 1, errs[0].Line)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "a-const.yml", `apiVersion: lyrebird/v1
kind: Generator
name: a-const
spec:
  template: "const {{.name}} = 1;"
`)
	writeDefinition(t, dir, "b-const.yaml", `apiVersion: lyrebird/v1
kind: Generator
name: b-const
spec:
  template: "const {{.name}} = 2;"
`)
	writeDefinition(t, dir, "broken.yml", `apiVersion: lyrebird/v1
kind: Generator
spec:
  template: "{{.a}}"
`)
	writeDefinition(t, dir, "notes.txt", "not a definition")

	r := New()
	result, err := r.LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a-const", "b-const"}, result.Loaded)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Path, "broken.yml")
	assert.Equal(t, 2, r.Len())
}

func TestLoadDirDuplicateName(t *testing.T) {
	dir := t.TempDir()
	def := `apiVersion: lyrebird/v1
kind: Generator
name: same
spec:
  template: "{{.a}}"
`
	writeDefinition(t, dir, "first.yml", def)
	writeDefinition(t, dir, "second.yml", def)

	r := New()
	result, err := r.LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"same"}, result.Loaded)
	require.Len(t, result.Failed, 1)

	var exists *AlreadyExistsError
	require.ErrorAs(t, result.Failed[0].Err, &exists)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := New().LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
