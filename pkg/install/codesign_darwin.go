//go:build darwin

package install

import "os/exec"

// codesign re-signs target with identity using the system codesign tool.
func codesign(target, identity string) error {
	if identity == "" {
		return nil
	}

	cmd := exec.Command("codesign", "--force", "--sign", identity, target)

	return cmd.Run()
}
