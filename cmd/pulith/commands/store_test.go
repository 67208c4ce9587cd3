package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pulith/internal/config"
)

func TestStoreLayout_Paths(t *testing.T) {
	t.Parallel()

	layout := newStoreLayout(&config.Config{Store: config.StoreConfig{Root: "/store"}})

	assert.Equal(t, "/store/node", layout.toolDir("node"))
	assert.Equal(t, "/store/node/20.1.0", layout.versionDir("node", "20.1.0"))
	assert.Equal(t, "/store/.staging/node", layout.pipelineStagingRoot("node"))
	assert.Equal(t, "/store/.extract/node/20.1.0", layout.extractDir("node", "20.1.0"))
	assert.Equal(t, "/store/.extract-ws/node", layout.extractWorkspaceRoot("node"))
}

func TestListInstalled_EnumeratesToolVersionPairs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	layout := newStoreLayout(&config.Config{Store: config.StoreConfig{Root: root}})

	require.NoError(t, os.MkdirAll(filepath.Join(root, "node", "20.1.0"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node", "18.0.0"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "go", "1.22.0"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".staging", "node"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".extract", "node"), 0o755))

	installed, err := listInstalled(layout, "")
	require.NoError(t, err)
	require.Len(t, installed, 3)

	assert.Equal(t, "go", installed[0].Tool)
	assert.Equal(t, "1.22.0", installed[0].Version)
	assert.Equal(t, "node", installed[1].Tool)
	assert.Equal(t, "18.0.0", installed[1].Version)
	assert.Equal(t, "node", installed[2].Tool)
	assert.Equal(t, "20.1.0", installed[2].Version)
}

func TestListInstalled_FiltersToSingleTool(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	layout := newStoreLayout(&config.Config{Store: config.StoreConfig{Root: root}})

	require.NoError(t, os.MkdirAll(filepath.Join(root, "node", "20.1.0"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "go", "1.22.0"), 0o755))

	installed, err := listInstalled(layout, "go")
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, "go", installed[0].Tool)
}

func TestListInstalled_MissingStoreRootIsNotAnError(t *testing.T) {
	t.Parallel()

	layout := newStoreLayout(&config.Config{Store: config.StoreConfig{Root: filepath.Join(t.TempDir(), "missing")}})

	installed, err := listInstalled(layout, "")
	require.NoError(t, err)
	assert.Empty(t, installed)
}

func TestDownloadFileName_DerivesFromURLPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "node-v20.1.0-linux-x64.tar.gz", downloadFileName("https://example.test/dist/node-v20.1.0-linux-x64.tar.gz"))
	assert.Equal(t, "download", downloadFileName(":not a url:"))
	assert.Equal(t, "download", downloadFileName("https://example.test/"))
}
