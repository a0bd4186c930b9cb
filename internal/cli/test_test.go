package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const passingScenario = `name: create-one
description: An owner creates one draft.
steps:
  - op: create
    as: owner-O
    args: {owner: owner-O, title: t, description: d, category: coding, evidence_uri: u}
    expect:
      result: {id: 1}
assertions:
  - type: record
    id: 1
    expect: {status: draft, timestamp: 1700000001}
`

const failingScenario = `name: wrong-expectation
description: Reading a missing record is NOT_FOUND, not INVALID_STATE.
steps:
  - op: get
    args: {id: 1}
    expect: {error: INVALID_STATE}
`

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeScenario(t *testing.T, dir, file, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, err := runTestCommand(t, "text", harnessScenarios)
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ lifecycle")
	assert.Contains(t, out, "✓ owner_cannot_self_verify")
	assert.Contains(t, out, "4 passed, 0 failed, 4 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := runTestCommand(t, "json", harnessScenarios, "--filter", "role*")
	require.NoError(t, err)

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, 1, response.Data.Total)
	require.Len(t, response.Data.Scenarios, 1)
	assert.Equal(t, "roles", response.Data.Scenarios[0].Name)
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scenarios")
	writeScenario(t, dir, "bad.yaml", failingScenario)

	out, err := runTestCommand(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, "E_TEST_FAILED", response.Error.Code)
	require.Len(t, response.Data.Scenarios, 1)
	assert.Contains(t, response.Data.Scenarios[0].Errors[0], "expected INVALID_STATE, got NOT_FOUND")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scenarios")
	writeScenario(t, dir, "broken.yaml", "name: broken\nsteps: []\n")

	out, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandGoldenUpdateThenMatch(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scenarios")
	writeScenario(t, dir, "create.yaml", passingScenario)

	_, err := runTestCommand(t, "text", dir, "--update")
	require.NoError(t, err)

	goldenPath := filepath.Join(root, "golden", "create-one.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"create-one"`)

	out, err := runTestCommand(t, "text", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ create-one")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"create-one","trace":[]}`), 0o644))
	out, err = runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandGoldenDirFlag(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scenarios")
	goldenDir := filepath.Join(root, "elsewhere")
	writeScenario(t, dir, "create.yaml", passingScenario)

	_, err := runTestCommand(t, "text", dir, "--update", "--golden-dir", goldenDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(goldenDir, "create-one.golden"))
	assert.NoFileExists(t, filepath.Join(root, "golden", "create-one.golden"))
}

func TestTestHelpText(t *testing.T) {
	out, err := runTestCommand(t, "text", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "scenarios-dir")
	assert.Contains(t, out, "--update")
	assert.Contains(t, out, "--filter")
	assert.Contains(t, out, "--golden-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "owner-create.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "owner-mint.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "verifier-add.yaml"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "owner-*")
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Contains(t, filepath.Base(f), "owner-")
	}

	_, err = findScenarioFiles(tmpDir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestFindScenarioFilesSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("testdata", "golden"), defaultGoldenDir("testdata/scenarios"))
	assert.Equal(t, filepath.Join("testdata", "golden"), defaultGoldenDir("testdata/scenarios/"))
	assert.Equal(t, filepath.Join("g", "lifecycle.golden"), goldenFilePath("g", "lifecycle"))
}
