// Package permission implements the cross-platform permission strategies
// applied to extracted archive entries (spec.md §4.C), grounded on
// pulith-fs/src/permissions.rs.
package permission

import (
	"fmt"
	"io/fs"
	"os"
)

// Strategy selects how an extracted entry's mode bits are derived from the
// archive's recorded mode (if any).
type Strategy int

const (
	// Standard honors the archive's mode when present; falls back to 0o644
	// and forces the 0o644 mask onto non-executable files.
	Standard Strategy = iota
	// ReadOnly always applies 0o444 regardless of the archive mode.
	ReadOnly
	// Preserve uses the archive mode as-is; without one, inherits the
	// process umask by leaving the freshly created file untouched.
	Preserve
	// Owned forces 0o644 regardless of the archive mode.
	Owned
)

func (s Strategy) String() string {
	switch s {
	case Standard:
		return "standard"
	case ReadOnly:
		return "readonly"
	case Preserve:
		return "preserve"
	case Owned:
		return "owned"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Apply sets path's permission bits according to strategy, given the
// archive's recorded mode (0 if the archive carried none). On non-Unix
// platforms os.Chmod maps the writable bit to the filesystem's
// readonly attribute; Inherit-equivalent cases (Preserve with no archive
// mode) are a no-op.
func Apply(path string, strategy Strategy, archiveMode fs.FileMode) error {
	mode, skip := resolve(strategy, archiveMode)
	if skip {
		return nil
	}

	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("apply permission %s to %s: %w", mode, path, err)
	}

	return nil
}

// resolve computes the mode to apply, and whether application should be
// skipped entirely (Preserve with no archive-recorded mode: inherit umask).
func resolve(strategy Strategy, archiveMode fs.FileMode) (fs.FileMode, bool) {
	const (
		defaultFileMode = fs.FileMode(0o644)
		readOnlyMode    = fs.FileMode(0o444)
	)

	switch strategy {
	case ReadOnly:
		return readOnlyMode, false
	case Owned:
		return defaultFileMode, false
	case Preserve:
		if archiveMode == 0 {
			return 0, true
		}

		return archiveMode.Perm(), false
	case Standard:
		fallthrough
	default:
		if archiveMode == 0 {
			return defaultFileMode, false
		}

		if !isExecutable(archiveMode) {
			return archiveMode.Perm() | defaultFileMode, false
		}

		return archiveMode.Perm(), false
	}
}

func isExecutable(mode fs.FileMode) bool {
	return mode.Perm()&0o111 != 0
}
