//go:build !windows

package install

// editRegistry is a no-op outside Windows (spec.md §4.M EditRegistry).
func editRegistry(string, string) error {
	return nil
}
