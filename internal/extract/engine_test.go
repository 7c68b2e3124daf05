package extract

import (
	"bytes"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderTemplate(t *testing.T, tmpl string, data any) string {
	t.Helper()
	parsed, err := template.New("test").Parse(tmpl)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, parsed.Execute(&buf, data))
	return buf.String()
}

func TestExtractRoundTrip(t *testing.T) {
	tmpl := "export interface {{.name}} {\n{{range .fields}}  {{.name}}: {{.type}};\n{{end}}}\n"
	params := map[string]any{
		"name": "User",
		"fields": []map[string]string{
			{"name": "id", "type": "number"},
			{"name": "email", "type": "string"},
		},
	}

	rendered := renderTemplate(t, tmpl, params)

	recovered, err := Extract(tmpl, rendered, Options{})
	require.NoError(t, err)
	assert.Equal(t, params, recovered)
}

func TestExtractRecoversEditedConstant(t *testing.T) {
	tmpl := "export const {{.name}} = '{{.value}}';"

	rendered := renderTemplate(t, tmpl, map[string]any{"name": "x", "value": "1"})
	require.Equal(t, "export const x = '1';", rendered)

	edited := "export const y = '2';"

	recovered, err := Extract(tmpl, edited, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "y", "value": "2"}, recovered)
}

func TestExtractAppendedDeclaration(t *testing.T) {
	tmpl := "{{range .columns}}{{.name}}: {{.type}} = {{.default}};\n{{end}}"
	params := map[string]any{
		"columns": []map[string]string{
			{"name": "id", "type": "int", "default": "0"},
			{"name": "label", "type": "str", "default": "''"},
			{"name": "ok", "type": "bool", "default": "false"},
		},
	}

	rendered := renderTemplate(t, tmpl, params)
	edited := rendered + "extra: float = 1.5;\n"

	recovered, err := Extract(tmpl, edited, Options{})
	require.NoError(t, err)

	columns, ok := recovered["columns"].([]map[string]string)
	require.True(t, ok)
	require.Len(t, columns, 4)
	assert.Equal(t, "id", columns[0]["name"])
	assert.Equal(t, "label", columns[1]["name"])
	assert.Equal(t, "ok", columns[2]["name"])
	assert.Equal(t, map[string]string{"name": "extra", "type": "float", "default": "1.5"}, columns[3])
}

func TestExtractScalarList(t *testing.T) {
	tmpl := "const names = [\n{{range .names}}  {{.}},\n{{end}}];\n"
	params := map[string]any{"names": []string{"alpha", "beta"}}

	rendered := renderTemplate(t, tmpl, params)

	recovered, err := Extract(tmpl, rendered, Options{})
	require.NoError(t, err)
	assert.Equal(t, params, recovered)

	edited := "const names = [\n  alpha,\n  beta,\n  gamma,\n];\n"
	recovered, err = Extract(tmpl, edited, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"names": []string{"alpha", "beta", "gamma"}}, recovered)
}

func TestExtractMissingValuesOmitted(t *testing.T) {
	tmpl := "Hello {{.name}}!\n{{range .fields}}{{.name}}: {{.type}};\n{{end}}"

	recovered, err := Extract(tmpl, "totally unrelated text", Options{})
	require.NoError(t, err)

	assert.NotContains(t, recovered, "name")

	fields, ok := recovered["fields"]
	require.True(t, ok, "a loop with no matches still yields an empty sequence")
	assert.Empty(t, fields)
}

func TestExtractNumberKinds(t *testing.T) {
	tmpl := "served on {{.port}} with {{.workers}} workers"
	opts := Options{ParamKinds: map[string]Kind{"port": KindNumber, "workers": KindNumber}}

	recovered, err := Extract(tmpl, "served on 9090 with 4 workers", opts)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"port": "9090", "workers": "4"}, recovered)
}

func TestExtractMalformedTemplate(t *testing.T) {
	_, err := Extract("{{range .a}}never closed", "anything", Options{})
	require.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
