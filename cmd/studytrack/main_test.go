package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/studytrack/internal/domain"
)

const testConfig = `
store:
  backend: sqlite
subjects:
  - name: Math
    topics: [Algebra, Geometry]
  - name: History
    topics: [Rome, Greece, Egypt]
`

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--db", filepath.Join(dir, "track.db"),
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfig), 0o600))
	return dir
}

func TestCLI_CheckAndStatus(t *testing.T) {
	dir := setup(t)

	_, err := run(t, dir, "check", "Math", "Algebra", "reviewed")
	require.NoError(t, err)
	out, err := run(t, dir, "check", "Math", "Algebra", "studied")
	require.NoError(t, err)
	assert.Contains(t, out, "Math  ##########----------  50% (1/2)")
	assert.Contains(t, out, "Overall  ####----------------  20% (1/5)")

	out, err = run(t, dir, "status", "Math")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] [x]  Algebra")
	assert.Contains(t, out, "[ ] [ ]  Geometry")
}

func TestCLI_AddDateRemove(t *testing.T) {
	dir := setup(t)

	out, err := run(t, dir, "add", "Math", "Linear", "Algebra")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Linear Algebra" to Math`)

	_, err = run(t, dir, "date", "Math", "Linear Algebra", "2026-12-01")
	require.NoError(t, err)

	out, err = run(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Linear Algebra  (2026-12-01)")

	_, err = run(t, dir, "add", "Math", "Algebra")
	assert.Error(t, err)

	_, err = run(t, dir, "remove", "Math", "Linear Algebra")
	require.NoError(t, err)
	out, err = run(t, dir, "reconcile", "Math")
	require.NoError(t, err)
	assert.NotContains(t, out, "Linear Algebra")
}

func TestCLI_Errors(t *testing.T) {
	dir := setup(t)

	_, err := run(t, dir, "check", "Math", "Algebra", "color")
	assert.Error(t, err)
	_, err = run(t, dir, "check", "Math", "Algebra", "date")
	assert.Error(t, err)
	_, err = run(t, dir, "date", "Math", "Algebra", "next week")
	assert.Error(t, err)
	_, err = run(t, dir, "status", "Physics")
	assert.Error(t, err)
}

func TestCLI_NoSubjects(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "status")
	assert.ErrorContains(t, err, "no subjects configured")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "--------------------   0% (0/0)", bar(domain.Progress{}))
	assert.Equal(t, "#################### 100% (3/3)", bar(domain.Progress{Done: 3, Total: 3, Pct: 100}))
}
