//go:build linux

package install

import (
	"os"
	"os/exec"
	"strings"
)

// patchRpath shells out to patchelf to rewrite an ELF binary's runtime
// search path, replacing every entry that starts with oldPrefix with one
// starting with newPrefix and leaving all other entries untouched. A
// missing binary or a missing patchelf tool is a silent no-op, matching
// the original implementation's own fallback.
func patchRpath(binary, oldPrefix, newPrefix string) error {
	info, err := os.Stat(binary)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}

	if _, err := exec.LookPath("patchelf"); err != nil {
		return nil
	}

	out, err := exec.Command("patchelf", "--print-rpath", binary).Output()
	if err != nil {
		return nil
	}

	current := strings.TrimSpace(string(out))
	if current == "" {
		return nil
	}

	entries := strings.Split(current, ":")
	for i, entry := range entries {
		if strings.HasPrefix(entry, oldPrefix) {
			entries[i] = newPrefix + strings.TrimPrefix(entry, oldPrefix)
		}
	}

	rewritten := strings.Join(entries, ":")
	if rewritten == current {
		return nil
	}

	return exec.Command("patchelf", "--set-rpath", rewritten, binary).Run()
}
