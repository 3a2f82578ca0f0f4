package ossfuzz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteGcloudIgnore(t *testing.T) {
	dir := t.TempDir()
	c := &Checkout{dir: dir}
	require.NoError(t, c.writeGcloudIgnore())

	bs, err := os.ReadFile(filepath.Join(dir, ".gcloudignore"))
	require.NoError(t, err)
	assert.Equal(
		t, "__pycache__\nbuild\n.git\n.pytest_cache\nvenv\n", string(bs),
	)
}

func TestCheckoutRemove_keepsUserDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "marker"), []byte("x"), 0644,
	))

	c := &Checkout{dir: dir, temp: false}
	c.Remove()

	// Directories the caller provided are never deleted.
	_, err := os.Stat(filepath.Join(dir, "marker"))
	assert.NoError(t, err)
}

func TestCloneOSSFuzz_existing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))

	c, err := CloneOSSFuzz(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, c.Dir())
}

func TestCheckoutSyncProjects(t *testing.T) {
	dir := t.TempDir()
	c := &Checkout{dir: dir}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "projects"), 0755))

	data := t.TempDir()
	extra := filepath.Join(data, "projects", "myproject")
	require.NoError(t, os.MkdirAll(extra, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(extra, "project.yaml"), []byte("language: c\n"), 0644,
	))

	require.NoError(t, c.SyncProjects(data))

	bs, err := os.ReadFile(
		filepath.Join(dir, "projects", "myproject", "project.yaml"),
	)
	require.NoError(t, err)
	assert.Equal(t, "language: c\n", string(bs))
}
