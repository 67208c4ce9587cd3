package platform

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsEqual_TrimsTrailingSeparator(t *testing.T) {
	t.Parallel()

	assert.True(t, PathsEqual("/usr/local/bin/", "/usr/local/bin"))
	assert.False(t, PathsEqual("/usr/local/bin", "/usr/bin"))
}

func TestPathModifier_PrependDedups(t *testing.T) {
	t.Parallel()

	t.Setenv(pathEnvName(), "/a"+string(os.PathListSeparator)+"/b")

	m := NewPathModifier()
	m.Prepend("/a")

	built := m.Build()
	assert.Equal(t, "/a"+string(os.PathListSeparator)+"/b", built)
}

func TestPathModifier_Remove(t *testing.T) {
	t.Parallel()

	t.Setenv(pathEnvName(), "/a"+string(os.PathListSeparator)+"/b")

	m := NewPathModifier()
	m.Remove("/a")

	assert.False(t, m.Contains("/a"))
	assert.True(t, m.Contains("/b"))
}

func TestIsInPath(t *testing.T) {
	t.Parallel()

	t.Setenv(pathEnvName(), "/usr/local/bin"+string(os.PathListSeparator)+"/usr/bin")

	assert.True(t, IsInPath("/usr/local/bin"))
	assert.False(t, IsInPath("/opt/nonexistent"))
}

func TestPathEnv_EmptyWhenUnset(t *testing.T) {
	t.Parallel()

	t.Setenv(pathEnvName(), "")

	require.Empty(t, PathEnv())
}
