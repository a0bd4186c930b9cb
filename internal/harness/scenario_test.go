package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "lifecycle.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "lifecycle", s.Name)
	require.Len(t, s.Steps, 8)
	assert.Equal(t, OpInit, s.Steps[0].Op)
	assert.Equal(t, "admin-A", s.Steps[0].As)
	require.NotNil(t, s.Steps[5].Expect)
	assert.Equal(t, "INVALID_STATE", s.Steps[5].Expect.Error)
	assert.Len(t, s.Assertions, 5)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty document",
			yaml: ``,
			want: "empty scenario document",
		},
		{
			name: "missing name",
			yaml: "description: d\nsteps:\n  - op: get\n    args: {id: 1}\n",
			want: "schema",
		},
		{
			name: "unknown top-level field",
			yaml: "name: n\ndescription: d\nassertion: []\nsteps:\n  - op: get\n    args: {id: 1}\n",
			want: "schema",
		},
		{
			name: "unknown op",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: delete\n    args: {id: 1}\n",
			want: "schema",
		},
		{
			name: "unknown error code",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: get\n    args: {id: 1}\n    expect: {error: NOPE}\n",
			want: "schema",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\nsteps: []\n",
			want: "schema",
		},
		{
			name: "missing args",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: get\n",
			want: "args",
		},
		{
			name: "list_count with both selectors",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: get\n    args: {id: 1}\nassertions:\n  - type: list_count\n    owner: o\n    category: c\n",
			want: "exactly one of owner or category",
		},
		{
			name: "record without id",
			yaml: "name: n\ndescription: d\nsteps:\n  - op: get\n    args: {id: 1}\nassertions:\n  - type: record\n    expect: {status: draft}\n",
			want: "id is required for record",
		},
		{
			name: "malformed yaml",
			yaml: "name: [\n",
			want: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateSchema_AcceptsShippedScenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NoError(t, ValidateSchema(data), f)
	}
}
