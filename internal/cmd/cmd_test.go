package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against a fresh stdout/stderr.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("GATHER_HOME", home)
	return home
}

// mustFutureTime returns a time safely past the file's current mtime, so a
// Chtimes call is guaranteed to register as strictly newer.
func mustFutureTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime().Add(2 * time.Second)
}

func writeSource(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCreateCommand(t *testing.T) {
	home := setupHome(t)

	out, err := execute(t, "", "create", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project demo")

	info, err := os.Stat(filepath.Join(home, "projects", "demo"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateDuplicateFails(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "create", "demo")
	require.NoError(t, err)

	_, err = execute(t, "", "create", "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCollectAndShow(t *testing.T) {
	home := setupHome(t)
	src := t.TempDir()
	writeSource(t, src, "a.js", "aaa")
	writeSource(t, src, filepath.Join("sub", "b.js"), "bb")

	_, err := execute(t, "", "create", "demo")
	require.NoError(t, err)

	out, err := execute(t, "", "collect", "demo", src, "--include", ".js", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Copied 2 file(s)")

	assert.FileExists(t, filepath.Join(home, "projects", "demo", "a.js"))
	assert.FileExists(t, filepath.Join(home, "projects", "demo", "sub_b.js"))
	assert.FileExists(t, filepath.Join(home, "projects", "demo", "structure.txt"))

	out, err = execute(t, "", "show", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Project:      demo")
	assert.Contains(t, out, "Files:        2")

	out, err = execute(t, "", "show", "demo", "--structure")
	require.NoError(t, err)
	assert.Contains(t, out, "sub_b.js")
	assert.Contains(t, out, "Total files: 2")
}

func TestCollectMissingRootFailsEarly(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "", "create", "demo")
	require.NoError(t, err)

	_, err = execute(t, "", "collect", "demo", filepath.Join(t.TempDir(), "nope"), "--yes")
	require.Error(t, err)
}

func TestCollectUnknownProjectFails(t *testing.T) {
	setupHome(t)
	src := t.TempDir()
	writeSource(t, src, "a.js", "x")

	_, err := execute(t, "", "collect", "ghost", src, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCollectDeclinedPrompt(t *testing.T) {
	home := setupHome(t)
	src := t.TempDir()
	writeSource(t, src, "a.js", "x")

	_, err := execute(t, "", "create", "demo")
	require.NoError(t, err)

	out, err := execute(t, "n\n", "collect", "demo", src)
	require.NoError(t, err)
	assert.Contains(t, out, "No changes applied.")
	assert.NoFileExists(t, filepath.Join(home, "projects", "demo", "a.js"))
}

func TestUpdateRefreshAfterModification(t *testing.T) {
	setupHome(t)
	src := t.TempDir()
	path := writeSource(t, src, "a.js", "short")

	_, err := execute(t, "", "create", "demo")
	require.NoError(t, err)
	_, err = execute(t, "", "collect", "demo", src, "--yes")
	require.NoError(t, err)

	// Grow the file; ensure the mtime moves forward past stat granularity.
	require.NoError(t, os.WriteFile(path, []byte("much longer content"), 0644))
	future := mustFutureTime(t, path)
	require.NoError(t, os.Chtimes(path, future, future))

	out, err := execute(t, "n\n", "update", "demo", "--mode", "refresh", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Copied 1 file(s)")
}

func TestUpdateInvalidMode(t *testing.T) {
	setupHome(t)
	_, err := execute(t, "", "update", "demo", "--mode", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestListCommand(t *testing.T) {
	setupHome(t)

	out, err := execute(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects.")

	_, err = execute(t, "", "create", "alpha")
	require.NoError(t, err)
	_, err = execute(t, "", "create", "beta")
	require.NoError(t, err)

	out, err = execute(t, "", "list")
	require.NoError(t, err)
	alphaIdx := strings.Index(out, "alpha")
	betaIdx := strings.Index(out, "beta")
	require.GreaterOrEqual(t, alphaIdx, 0)
	require.Greater(t, betaIdx, alphaIdx)
}

func TestSelectiveUpdateWithPickFlag(t *testing.T) {
	setupHome(t)
	src := t.TempDir()
	pathA := writeSource(t, src, "a.js", "one")
	writeSource(t, src, "b.js", "two")

	_, err := execute(t, "", "create", "demo")
	require.NoError(t, err)
	_, err = execute(t, "", "collect", "demo", src, "--yes")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(pathA, []byte("one but longer"), 0644))
	future := mustFutureTime(t, pathA)
	require.NoError(t, os.Chtimes(pathA, future, future))

	out, err := execute(t, "", "update", "demo", "--mode", "selective", "--pick", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Copied 1 file(s)")
}
