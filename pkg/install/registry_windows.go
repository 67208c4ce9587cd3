//go:build windows

package install

import "golang.org/x/sys/windows/registry"

// editRegistry writes value under HKEY_CURRENT_USER\Software\pulith at key.
func editRegistry(key, value string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, `Software\pulith`, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	return k.SetStringValue(key, value)
}
