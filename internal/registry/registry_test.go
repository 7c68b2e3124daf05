package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndResolve(t *testing.T) {
	r := New()
	def := FromTemplate("ts-const", "one constant", "export const {{.name}} = '{{.value}}';")

	require.NoError(t, r.Register(def))

	got, err := r.Resolve("ts-const")
	require.NoError(t, err)
	assert.Equal(t, "ts-const", got.Name)
	assert.Equal(t, "one constant", got.Description)
}

func TestResolveUnknown(t *testing.T) {
	_, err := New().Resolve("ghost")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(FromTemplate("dup", "", "{{.a}}")))

	err := r.Register(FromTemplate("dup", "", "{{.b}}"))

	var exists *AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "dup", exists.Name)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterValidatesName(t *testing.T) {
	tests := []struct {
		label string
		name  string
	}{
		{"empty", ""},
		{"uppercase", "TsConst"},
		{"leading digit", "9lives"},
		{"spaces", "ts const"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			err := New().Register(FromTemplate(tt.name, "", "{{.a}}"))

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, "name", errs[0].Field)
		})
	}
}

func TestRegisterRequiresBacking(t *testing.T) {
	err := New().Register(&Definition{Name: "empty"})

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs.Error(), "neither a template nor a render function")
}

func TestRegisterRejectsMalformedTemplate(t *testing.T) {
	err := New().Register(FromTemplate("broken", "",
		"{{range .items}}{{.name}}"))

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "spec.template", errs[0].Field)
}

func TestRegisterParamValidation(t *testing.T) {
	tests := []struct {
		name   string
		params []ParamSpec
		field  string
	}{
		{
			name:   "unnamed param",
			params: []ParamSpec{{Kind: "string"}},
			field:  "spec.params[0].name",
		},
		{
			name:   "duplicate param",
			params: []ParamSpec{{Name: "a"}, {Name: "a"}},
			field:  "spec.params[1].name",
		},
		{
			name:   "unknown kind",
			params: []ParamSpec{{Name: "a", Kind: "integer"}},
			field:  "spec.params[0].kind",
		},
		{
			name:   "fields on scalar param",
			params: []ParamSpec{{Name: "a", Kind: "string", Fields: []FieldSpec{{Name: "x"}}}},
			field:  "spec.params[0].fields",
		},
		{
			name:   "unknown field kind",
			params: []ParamSpec{{Name: "a", Kind: "list", Fields: []FieldSpec{{Name: "x", Kind: "bool"}}}},
			field:  "spec.params[0].fields[0].kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Register(FromTemplate("gen", "", "{{.a}}", tt.params...))

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

func TestAllKeepsRegistrationOrder(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(FromTemplate(name, "", "{{.a}}")))
	}

	var names []string
	for _, def := range r.All() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}
