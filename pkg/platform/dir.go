package platform

import (
	"os"
	"path/filepath"
	"sync"
)

// UserHome returns the current user's home directory, memoized for the
// life of the process (spec.md §4.P).
var UserHome = sync.OnceValue(func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return home
})

// UserConfig returns the platform-conventional directory for user
// configuration files, grounded on pulith-platform/src/dir.rs: APPDATA on
// Windows, ~/Library/Application Support on macOS, XDG_CONFIG_HOME (or
// ~/.config) elsewhere.
var UserConfig = sync.OnceValue(func() string {
	switch CurrentOS() {
	case OSWindows:
		if v := os.Getenv("APPDATA"); v != "" {
			return v
		}

		return filepath.Join(UserHome(), "AppData", "Roaming")
	case OSMacOS:
		return filepath.Join(UserHome(), "Library", "Application Support")
	default:
		if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
			return v
		}

		return filepath.Join(UserHome(), ".config")
	}
})

// UserData returns the platform-conventional directory for user data
// files.
var UserData = sync.OnceValue(func() string {
	switch CurrentOS() {
	case OSWindows:
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return v
		}

		return filepath.Join(UserHome(), "AppData", "Local")
	case OSMacOS:
		return filepath.Join(UserHome(), "Library", "Application Support")
	default:
		if v := os.Getenv("XDG_DATA_HOME"); v != "" {
			return v
		}

		return filepath.Join(UserHome(), ".local", "share")
	}
})

// UserCache returns the platform-conventional directory for user cache
// files.
var UserCache = sync.OnceValue(func() string {
	switch CurrentOS() {
	case OSWindows:
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return v
		}

		return filepath.Join(UserHome(), "AppData", "Local")
	case OSMacOS:
		return filepath.Join(UserHome(), "Library", "Caches")
	default:
		if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
			return v
		}

		return filepath.Join(UserHome(), ".cache")
	}
})

// UserTemp returns the OS's conventional scratch directory.
var UserTemp = sync.OnceValue(func() string {
	return os.TempDir()
})
