package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmptyPlan(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "plan.yml"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLoadEmptyFileIsEmptyPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lyrebird", "plan.yml")

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Add(Call{
		ID:        "user-model",
		Generator: "ts-interface",
		Params:    map[string]any{"name": "User"},
		Output:    "src/models/user.ts",
	}))
	require.NoError(t, s.Add(Call{
		ID:        "user-service",
		Generator: "ts-const",
		Params:    map[string]any{"name": "service", "value": "user"},
		Output:    "src/services/user.ts",
		DependsOn: []string{"user-model"},
	}))
	require.NoError(t, s.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	calls := loaded.All()
	assert.Equal(t, "user-model", calls[0].ID)
	assert.Equal(t, "user-service", calls[1].ID)
	assert.Equal(t, []string{"user-model"}, calls[1].DependsOn)
	assert.Equal(t, "User", calls[0].Params["name"])
	assert.False(t, calls[0].CreatedAt.IsZero())
}

func TestSaveWritesPlanHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yml")
	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: lyrebird/v1")
	assert.Contains(t, string(data), "kind: Plan")
}

func TestLoadRejectsWrongHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "wrong apiVersion",
			content: "apiVersion: lyrebird/v2\nkind: Plan\ncalls: []\n",
			field:   "apiVersion",
		},
		{
			name:    "wrong kind",
			content: "apiVersion: lyrebird/v1\nkind: Manifest\ncalls: []\n",
			field:   "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plan.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	content := `apiVersion: lyrebird/v1
kind: Plan
calls:
  - id: a
    generator: g
    output: a.ts
  - id: a
    generator: g
    output: b.ts
`
	path := filepath.Join(t.TempDir(), "plan.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)

	var exists *AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "a", exists.ID)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Load(filepath.Join(t.TempDir(), "plan.yml"))
	require.NoError(t, err)
	return s
}

func TestAddValidatesFields(t *testing.T) {
	tests := []struct {
		name  string
		call  Call
		field string
	}{
		{"missing id", Call{Generator: "g", Output: "o.ts"}, "id"},
		{"missing generator", Call{ID: "a", Output: "o.ts"}, "generator"},
		{"missing output", Call{ID: "a", Generator: "g"}, "output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newStore(t).Add(tt.call)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAddDuplicateID(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add(Call{ID: "a", Generator: "g", Output: "a.ts"}))

	err := s.Add(Call{ID: "a", Generator: "g", Output: "b.ts"})

	var exists *AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "a", exists.ID)
}

func TestAddUnknownDependency(t *testing.T) {
	s := newStore(t)

	err := s.Add(Call{ID: "a", Generator: "g", Output: "a.ts", DependsOn: []string{"ghost"}})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
	assert.Equal(t, 0, s.Len())
}

func TestAddSelfDependencyFailsAtAdd(t *testing.T) {
	s := newStore(t)

	err := s.Add(Call{ID: "a", Generator: "g", Output: "a.ts", DependsOn: []string{"a"}})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dependsOn", verr.Field)
	assert.Equal(t, 0, s.Len())
}

func TestAddStampsCreatedAt(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add(Call{ID: "a", Generator: "g", Output: "a.ts"}))

	call, ok := s.Get("a")
	require.True(t, ok)
	assert.False(t, call.CreatedAt.IsZero())
}

func TestUpdate(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add(Call{ID: "a", Generator: "g", Output: "a.ts"}))
	before, _ := s.Get("a")

	require.NoError(t, s.Update(Call{
		ID:        "a",
		Generator: "g",
		Params:    map[string]any{"name": "renamed"},
		Output:    "a.ts",
	}))

	after, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "renamed", after.Params["name"])
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt), "update keeps the original timestamp")
}

func TestUpdateUnknownCall(t *testing.T) {
	err := newStore(t).Update(Call{ID: "ghost", Generator: "g", Output: "o.ts"})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "call", notFound.Kind)
}

func TestUpdateRejectsCycleAndRollsBack(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add(Call{ID: "a", Generator: "g", Output: "a.ts"}))
	require.NoError(t, s.Add(Call{ID: "b", Generator: "g", Output: "b.ts", DependsOn: []string{"a"}}))

	err := s.Update(Call{ID: "a", Generator: "g", Output: "a.ts", DependsOn: []string{"b"}})

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)

	a, ok := s.Get("a")
	require.True(t, ok)
	assert.Empty(t, a.DependsOn, "failed update must not stick")
}

func TestAllReturnsCopy(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Add(Call{ID: "a", Generator: "g", Output: "a.ts"}))

	calls := s.All()
	calls[0].ID = "mutated"

	call, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", call.ID)
}
