package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// partialPattern accepts any prefix of the dotted major.minor.patch triple.
var partialPattern = regexp.MustCompile(
	`^(?:(?P<major>[0-9]+))?(?:\.(?P<minor>[0-9]+))?(?:\.(?P<patch>[0-9]+))?$`,
)

// parsePartial implements spec.md §4.E's Partial grammar: a dotted prefix
// plus an optional trailing "lts" marker, optional pre-release and build.
func parsePartial(s string) (Partial, error) {
	trimmed := strings.TrimSpace(s)

	lts := strings.HasSuffix(trimmed, "lts")
	if lts {
		trimmed = strings.TrimSuffix(trimmed, "lts")
	}

	core, build := splitOnce(trimmed, '+')
	core, pre := splitOnce(core, '-')

	m := partialPattern.FindStringSubmatch(core)
	if m == nil {
		return Partial{}, fmt.Errorf("invalid partial version %q", s)
	}

	major := parseOptionalUint(m[1])
	minor := parseOptionalUint(m[2])
	patch := parseOptionalUint(m[3])

	if major == nil && minor == nil && patch == nil {
		return Partial{}, fmt.Errorf("invalid partial version %q: no numeric component", s)
	}

	p := Partial{Major: major, Minor: minor, Patch: patch, LTS: lts}

	if pre != "" {
		p.Pre = &pre
	}

	if build != "" {
		p.Build = &build
	}

	return p, nil
}

func splitOnce(s string, sep byte) (before, after string) {
	idx := strings.IndexByte(s, sep)
	if idx < 0 {
		return s, ""
	}

	return s[:idx], s[idx+1:]
}

func parseOptionalUint(s string) *uint64 {
	if s == "" {
		return nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}

	return &n
}
