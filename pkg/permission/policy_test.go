package permission

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Standard_NoArchiveMode(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, 0o600)

	require.NoError(t, Apply(path, Standard, 0))

	assertMode(t, path, 0o644)
}

func TestApply_Standard_NonExecutableGetsReadMask(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, 0o600)

	require.NoError(t, Apply(path, Standard, 0o600))

	assertMode(t, path, 0o644|0o600)
}

func TestApply_Standard_ExecutablePreserved(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, 0o600)

	require.NoError(t, Apply(path, Standard, 0o755))

	assertMode(t, path, 0o755)
}

func TestApply_ReadOnly(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, 0o644)

	require.NoError(t, Apply(path, ReadOnly, 0o755))

	assertMode(t, path, 0o444)
}

func TestApply_Owned(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, 0o755)

	require.NoError(t, Apply(path, Owned, 0o755))

	assertMode(t, path, 0o644)
}

func TestApply_Preserve_WithArchiveMode(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, 0o644)

	require.NoError(t, Apply(path, Preserve, 0o750))

	assertMode(t, path, 0o750)
}

func TestApply_Preserve_NoArchiveMode_IsNoOp(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, 0o640)

	require.NoError(t, Apply(path, Preserve, 0))

	assertMode(t, path, 0o640)
}

func writeTempFile(t *testing.T, mode os.FileMode) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "entry")
	require.NoError(t, os.WriteFile(path, []byte("data"), mode))

	return path
}

func assertMode(t *testing.T, path string, want os.FileMode) {
	t.Helper()

	if runtime.GOOS == "windows" {
		// os.Chmod on Windows only maps the writable bit to the readonly
		// attribute; exact mode bits aren't preserved.
		return
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, want, info.Mode().Perm())
}
