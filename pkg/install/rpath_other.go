//go:build !linux

package install

// patchRpath is a no-op outside Linux (spec.md §4.M PatchRpath).
func patchRpath(binary, oldPrefix, newPrefix string) error {
	return nil
}
