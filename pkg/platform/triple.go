package platform

import "strings"

// TargetTriple identifies a release asset's build target, grounded on
// pulith-platform/src/platform.rs's TargetTriple: arch-vendor-os[-env].
type TargetTriple struct {
	Arch   Arch
	Vendor string
	OS     OS
	Env    *string
}

// String renders the triple in the conventional dash-separated form.
func (t TargetTriple) String() string {
	parts := []string{t.Arch.String(), t.Vendor, t.OS.String()}
	if t.Env != nil && *t.Env != "" {
		parts = append(parts, *t.Env)
	}

	return strings.Join(parts, "-")
}

// HostTriple returns the running process's own target triple, using
// "unknown" as the vendor field, matching the toolchains' own convention
// for platforms without a meaningful vendor.
func HostTriple() TargetTriple {
	return TargetTriple{
		Arch:   CurrentArch(),
		Vendor: "unknown",
		OS:     CurrentOS(),
	}
}

// ParseTriple parses a dash-separated target triple of 2-4 parts. Because
// the vendor field is sometimes omitted, disambiguation works by testing
// whether each middle segment parses as a known OS: the first segment that
// does is the OS, everything before it is the vendor.
func ParseTriple(s string) (TargetTriple, bool) {
	parts := strings.Split(s, "-")
	if len(parts) < 2 {
		return TargetTriple{}, false
	}

	arch := ParseArch(parts[0])
	if arch == ArchUnknown {
		return TargetTriple{}, false
	}

	rest := parts[1:]

	osIdx := -1

	for i, p := range rest {
		if ParseOS(p) != OSUnknown {
			osIdx = i
			break
		}
	}

	if osIdx == -1 {
		return TargetTriple{}, false
	}

	vendor := strings.Join(rest[:osIdx], "-")
	os := ParseOS(rest[osIdx])

	var env *string
	if remainder := rest[osIdx+1:]; len(remainder) > 0 {
		joined := strings.Join(remainder, "-")
		env = &joined
	}

	return TargetTriple{Arch: arch, Vendor: vendor, OS: os, Env: env}, true
}
