//go:build linux

package install

import "os/exec"

// runLdconfig refreshes the dynamic linker cache. ldconfig's absence (e.g.
// unprivileged containers) is not treated as a failure: the cache simply
// stays stale until the next system-wide refresh.
func runLdconfig() error {
	if _, err := exec.LookPath("ldconfig"); err != nil {
		return nil
	}

	return exec.Command("ldconfig").Run()
}
