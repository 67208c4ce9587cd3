package platform

import (
	"bufio"
	"os"
	"strings"
	"sync"
)

// Distro identifies a Linux distribution family, grounded on
// pulith-platform/src/os.rs's Distro enum. DistroNone is the result on
// every non-Linux OS; DistroUnknown means Linux but an unrecognized or
// unreadable /etc/os-release.
type Distro int

const (
	DistroNone Distro = iota
	DistroUnknown
	DistroUbuntu
	DistroDebian
	DistroFedora
	DistroRedHatEnterpriseLinux
	DistroCentOS
	DistroArchLinux
	DistroAlpine
	DistroOpenSUSE
	DistroGentoo
	DistroManjaro
	DistroNixOS
	DistroRaspbian
)

func (d Distro) String() string {
	switch d {
	case DistroNone:
		return "none"
	case DistroUbuntu:
		return "ubuntu"
	case DistroDebian:
		return "debian"
	case DistroFedora:
		return "fedora"
	case DistroRedHatEnterpriseLinux:
		return "rhel"
	case DistroCentOS:
		return "centos"
	case DistroArchLinux:
		return "arch"
	case DistroAlpine:
		return "alpine"
	case DistroOpenSUSE:
		return "opensuse"
	case DistroGentoo:
		return "gentoo"
	case DistroManjaro:
		return "manjaro"
	case DistroNixOS:
		return "nixos"
	case DistroRaspbian:
		return "raspbian"
	default:
		return "unknown"
	}
}

// parseDistroID maps /etc/os-release's ID value (and a few common aliases)
// to a Distro.
func parseDistroID(id string) Distro {
	switch strings.ToLower(strings.Trim(id, `"`)) {
	case "ubuntu":
		return DistroUbuntu
	case "debian":
		return DistroDebian
	case "fedora":
		return DistroFedora
	case "rhel", "redhat":
		return DistroRedHatEnterpriseLinux
	case "centos":
		return DistroCentOS
	case "arch", "archlinux":
		return DistroArchLinux
	case "alpine":
		return DistroAlpine
	case "opensuse", "opensuse-leap", "opensuse-tumbleweed":
		return DistroOpenSUSE
	case "gentoo":
		return DistroGentoo
	case "manjaro":
		return DistroManjaro
	case "nixos":
		return DistroNixOS
	case "raspbian":
		return DistroRaspbian
	default:
		return DistroUnknown
	}
}

const osReleasePath = "/etc/os-release"

func readDistro() Distro {
	if CurrentOS() != OSLinux {
		return DistroNone
	}

	f, err := os.Open(osReleasePath)
	if err != nil {
		return DistroUnknown
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if after, ok := strings.CutPrefix(line, "ID="); ok {
			return parseDistroID(after)
		}
	}

	return DistroUnknown
}

var currentDistroOnce = sync.OnceValue(readDistro)

// CurrentDistro returns the host's Linux distribution, memoized since
// /etc/os-release is stable for the life of the process. Returns
// DistroNone on any non-Linux OS.
func CurrentDistro() Distro {
	return currentDistroOnce()
}
