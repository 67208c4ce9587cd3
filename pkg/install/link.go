package install

import "os"

// activateLink creates a symlink from target to staging, the activation
// mechanism for spec.md §4.N, matching pkg/archive/extract.go's existing
// os.Symlink usage rather than special-casing Windows dir/file targets.
func activateLink(staging, target string) error {
	return os.Symlink(staging, target)
}
