package platform

import (
	"os"
	"strings"
)

// pathEnvName is the environment variable holding the search path.
// Windows technically looks this up case-insensitively ("Path", "PATH",
// "path" are all equivalent), but os.Getenv/os.Setenv need one canonical
// spelling, and "Path" is what cmd.exe itself writes.
func pathEnvName() string {
	if CurrentOS() == OSWindows {
		return "Path"
	}

	return "PATH"
}

// PathEnv returns the current process's PATH, split on the platform's
// list separator.
func PathEnv() []string {
	raw := os.Getenv(pathEnvName())
	if raw == "" {
		return nil
	}

	return strings.Split(raw, string(os.PathListSeparator))
}

// PathsEqual compares two filesystem paths loosely: trailing separators
// are trimmed, and on case-insensitive filesystems (Windows, macOS) the
// comparison is case-folded.
func PathsEqual(a, b string) bool {
	a = strings.TrimRight(a, `/\`)
	b = strings.TrimRight(b, `/\`)

	if CurrentOS() == OSWindows || CurrentOS() == OSMacOS {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}

	return a == b
}

// IsInPath reports whether dir is already present in PATH.
func IsInPath(dir string) bool {
	for _, p := range PathEnv() {
		if PathsEqual(p, dir) {
			return true
		}
	}

	return false
}

// PathModifier builds a new PATH value by prepending and/or removing
// entries from the current one, grounded on pulith-platform/src/path.rs's
// PathModifier builder.
type PathModifier struct {
	entries []string
}

// NewPathModifier seeds a modifier from the current process PATH.
func NewPathModifier() *PathModifier {
	return &PathModifier{entries: PathEnv()}
}

// Prepend adds dir to the front of the PATH, removing any existing
// occurrence first so the result has no duplicates.
func (m *PathModifier) Prepend(dir string) *PathModifier {
	m.Remove(dir)
	m.entries = append([]string{dir}, m.entries...)

	return m
}

// Remove deletes every occurrence of dir from the PATH.
func (m *PathModifier) Remove(dir string) *PathModifier {
	out := m.entries[:0:0]

	for _, e := range m.entries {
		if !PathsEqual(e, dir) {
			out = append(out, e)
		}
	}

	m.entries = out

	return m
}

// Contains reports whether dir is present in the modifier's current state.
func (m *PathModifier) Contains(dir string) bool {
	for _, e := range m.entries {
		if PathsEqual(e, dir) {
			return true
		}
	}

	return false
}

// Build joins the modifier's entries back into a single PATH string.
func (m *PathModifier) Build() string {
	return strings.Join(m.entries, string(os.PathListSeparator))
}
