package platform

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Shell identifies the interactive shell a pulith-managed PATH entry (or
// shell-specific init script) should target, grounded on
// pulith-platform/src/shell.rs's Shell enum.
type Shell int

const (
	ShellUnknown Shell = iota
	ShellBash
	ShellZsh
	ShellFish
	ShellPowershell
	ShellPwsh
	ShellCmd
	ShellNushell
	ShellElvish
	ShellIon
	ShellXonsh
)

func (s Shell) String() string {
	switch s {
	case ShellBash:
		return "bash"
	case ShellZsh:
		return "zsh"
	case ShellFish:
		return "fish"
	case ShellPowershell:
		return "powershell"
	case ShellPwsh:
		return "pwsh"
	case ShellCmd:
		return "cmd"
	case ShellNushell:
		return "nu"
	case ShellElvish:
		return "elvish"
	case ShellIon:
		return "ion"
	case ShellXonsh:
		return "xonsh"
	default:
		return "unknown"
	}
}

// ParseShell maps a shell executable name (with or without extension) to
// a Shell.
func ParseShell(s string) Shell {
	name := strings.TrimSuffix(strings.ToLower(filepath.Base(s)), ".exe")

	switch name {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	case "powershell":
		return ShellPowershell
	case "pwsh":
		return ShellPwsh
	case "cmd", "cmd.exe":
		return ShellCmd
	case "nu", "nushell":
		return ShellNushell
	case "elvish":
		return ShellElvish
	case "ion":
		return ShellIon
	case "xonsh":
		return ShellXonsh
	default:
		return ShellUnknown
	}
}

// Executable returns the shell's conventional executable name.
func (s Shell) Executable() string {
	switch s {
	case ShellCmd:
		if CurrentOS() == OSWindows {
			return "cmd.exe"
		}

		return "cmd"
	default:
		return s.String()
	}
}

// ConfigDir returns the directory a shell's own init scripts live in, when
// pulith knows one. POSIX shells get an XDG-based guess; Cmd and Unknown
// have no well-known per-user config directory.
func (s Shell) ConfigDir() (string, bool) {
	switch s {
	case ShellBash, ShellZsh, ShellFish, ShellNushell, ShellElvish, ShellIon, ShellXonsh:
		return UserConfig(), true
	case ShellPowershell, ShellPwsh:
		return filepath.Join(UserHome(), "Documents", "PowerShell"), true
	default:
		return "", false
	}
}

// detectShell inspects the environment for evidence of the running
// interactive shell: $SHELL on POSIX, $PSModulePath for Powershell/pwsh,
// falling back to Unknown when neither is set (spec.md §4.P; the original
// uses an external process-inspection crate pulith has no equivalent
// dependency for, so this is env-heuristic only).
func detectShell() Shell {
	if os.Getenv("PSModulePath") != "" {
		return ShellPowershell
	}

	if shellPath := os.Getenv("SHELL"); shellPath != "" {
		return ParseShell(shellPath)
	}

	if CurrentOS() == OSWindows {
		return ShellCmd
	}

	return ShellUnknown
}

var currentShellOnce = sync.OnceValue(detectShell)

// CurrentShell returns the detected current shell, memoized for the life
// of the process.
func CurrentShell() Shell {
	return currentShellOnce()
}
