// Package commands implements the pulith CLI's subcommands, grounded on
// the cmd/codefang/commands package's one-struct-per-command shape.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/Sumatoshi-tech/pulith/internal/config"
)

// storeLayout resolves the on-disk paths pulith's install pipeline reads
// from and writes to, all rooted under config.Config.Store.Root:
//
//	<root>/<tool>/<version>          activation symlink, created by the
//	                                  install pipeline's Activate phase
//	<root>/.staging/<tool>            pipeline staging root (uuid dirs)
//	<root>/.extract/<tool>/<version>  committed archive extraction, the
//	                                  pipeline's Source
//	<cache>/downloads/<tool>/<version>/<file>
//	                                  fetch destination before extraction
type storeLayout struct {
	root string
}

func newStoreLayout(cfg *config.Config) storeLayout {
	return storeLayout{root: cfg.Store.Root}
}

func (s storeLayout) toolDir(tool string) string {
	return filepath.Join(s.root, tool)
}

func (s storeLayout) versionDir(tool, version string) string {
	return filepath.Join(s.root, tool, version)
}

func (s storeLayout) pipelineStagingRoot(tool string) string {
	return filepath.Join(s.root, ".staging", tool)
}

func (s storeLayout) extractDir(tool, version string) string {
	return filepath.Join(s.root, ".extract", tool, version)
}

func (s storeLayout) extractWorkspaceRoot(tool string) string {
	return filepath.Join(s.root, ".extract-ws", tool)
}

// installedVersion describes one entry found under a tool's directory.
type installedVersion struct {
	Tool    string
	Version string
	Path    string
	Info    os.FileInfo
}

var versionDirName = regexp.MustCompile(`^[A-Za-z0-9_.+-]+$`)

// listInstalled enumerates every <root>/<tool>/<version> entry. When tool
// is empty, every tool directory is scanned.
func listInstalled(s storeLayout, tool string) ([]installedVersion, error) {
	tools := []string{tool}
	if tool == "" {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}

			return nil, fmt.Errorf("read store root: %w", err)
		}

		tools = tools[:0]

		for _, e := range entries {
			if !e.IsDir() || isReservedStoreDir(e.Name()) {
				continue
			}

			tools = append(tools, e.Name())
		}
	}

	var out []installedVersion

	for _, t := range tools {
		versions, err := os.ReadDir(s.toolDir(t))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return nil, fmt.Errorf("read tool dir %q: %w", t, err)
		}

		for _, v := range versions {
			if !versionDirName.MatchString(v.Name()) {
				continue
			}

			info, err := v.Info()
			if err != nil {
				continue
			}

			out = append(out, installedVersion{
				Tool:    t,
				Version: v.Name(),
				Path:    s.versionDir(t, v.Name()),
				Info:    info,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Tool != out[j].Tool {
			return out[i].Tool < out[j].Tool
		}

		return out[i].Version < out[j].Version
	})

	return out, nil
}

func isReservedStoreDir(name string) bool {
	switch name {
	case ".staging", ".extract", ".extract-ws":
		return true
	default:
		return false
	}
}
