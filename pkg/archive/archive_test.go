package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGameDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "story.yaml"), []byte("name: Test Story\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "savegames.db"), []byte("bolt-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts.db"), []byte("sqlite-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.log"), []byte("not backed up"), 0o644))
	return dir
}

func TestCreateAndList(t *testing.T) {
	dir := newGameDir(t)

	path, err := Create(dir, "Test Story")
	require.NoError(t, err)
	assert.FileExists(t, path)

	backups, err := List(dir)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "Test Story", backups[0].Story)
	assert.Equal(t, 3, backups[0].Files)
}

func TestBackupSkipsPreviousBackups(t *testing.T) {
	dir := newGameDir(t)
	_, err := Create(dir, "Test Story")
	require.NoError(t, err)

	// A second backup must not swallow the first one.
	path2, err := Create(dir, "Test Story")
	require.NoError(t, err)
	m, err := readManifest(path2)
	require.NoError(t, err)
	assert.Len(t, m.Files, 3)
}

func TestRestoreRoundTrip(t *testing.T) {
	dir := newGameDir(t)
	path, err := Create(dir, "Test Story")
	require.NoError(t, err)

	fresh := t.TempDir()
	res, err := Restore(path, fresh, false)
	require.NoError(t, err)
	assert.Equal(t, "Test Story", res.Story)
	assert.Equal(t, 3, res.FilesRestored)
	assert.Empty(t, res.Skipped)

	data, err := os.ReadFile(filepath.Join(fresh, "savegames.db"))
	require.NoError(t, err)
	assert.Equal(t, "bolt-bytes", string(data))
}

func TestRestoreSkipsExistingWithoutOverwrite(t *testing.T) {
	dir := newGameDir(t)
	path, err := Create(dir, "Test Story")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "savegames.db"), []byte("newer"), 0o644))
	res, err := Restore(path, dir, false)
	require.NoError(t, err)
	assert.Contains(t, res.Skipped, "savegames.db")

	data, _ := os.ReadFile(filepath.Join(dir, "savegames.db"))
	assert.Equal(t, "newer", string(data))

	res, err = Restore(path, dir, true)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	data, _ = os.ReadFile(filepath.Join(dir, "savegames.db"))
	assert.Equal(t, "bolt-bytes", string(data))
}

func TestRestoreDetectsCorruption(t *testing.T) {
	dir := newGameDir(t)
	path, err := Create(dir, "Test Story")
	require.NoError(t, err)

	// Truncating the gzip stream or flipping bytes must not restore.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)/2] ^= 0xff
	tampered := filepath.Join(t.TempDir(), "tampered.tar.gz")
	require.NoError(t, os.WriteFile(tampered, data, 0o644))

	_, err = Restore(tampered, t.TempDir(), false)
	assert.Error(t, err)
}
