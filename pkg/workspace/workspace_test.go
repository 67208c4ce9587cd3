package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesStagingDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	w, err := Open(root)
	require.NoError(t, err)

	info, err := os.Stat(w.Staging())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, w.Abort())
}

func TestWorkspace_Commit_SameFilesystem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	w, err := Open(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(w.Staging(), "file.txt"), []byte("data"), 0o644))

	dest := filepath.Join(root, "dest")
	require.NoError(t, w.Commit(dest))

	assert.NoFileExists(t, w.Staging())
	assert.FileExists(t, filepath.Join(dest, "file.txt"))
}

func TestWorkspace_Commit_ThenCommitAgainErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	w, err := Open(root)
	require.NoError(t, err)

	dest := filepath.Join(root, "dest")
	require.NoError(t, w.Commit(dest))

	err = w.Commit(filepath.Join(root, "dest2"))
	assert.Error(t, err)
}

func TestWorkspace_Abort_RemovesStaging(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	w, err := Open(root)
	require.NoError(t, err)

	staging := w.Staging()
	require.NoError(t, os.WriteFile(filepath.Join(staging, "file.txt"), []byte("data"), 0o644))

	require.NoError(t, w.Abort())
	assert.NoDirExists(t, staging)
}

func TestWorkspace_Abort_AfterCommit_IsNoOp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	w, err := Open(root)
	require.NoError(t, err)

	dest := filepath.Join(root, "dest")
	require.NoError(t, w.Commit(dest))

	assert.NoError(t, w.Abort())
	assert.DirExists(t, dest)
}

func TestWorkspace_Commit_RemovesStaleDestination(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dest := filepath.Join(root, "dest")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale.txt"), []byte("old"), 0o644))

	w, err := Open(root)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(w.Staging(), "fresh.txt"), []byte("new"), 0o644))

	require.NoError(t, w.Commit(dest))

	assert.NoFileExists(t, filepath.Join(dest, "stale.txt"))
	assert.FileExists(t, filepath.Join(dest, "fresh.txt"))
}
