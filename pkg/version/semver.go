package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// semverPattern follows the canonical SemVer 2.0.0 grammar.
var semverPattern = regexp.MustCompile(
	`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`,
)

func parseSemVer(s string) (triple, bool) {
	m := semverPattern.FindStringSubmatch(strings.TrimPrefix(s, "v"))
	if m == nil {
		return triple{}, false
	}

	major, errMajor := strconv.ParseUint(m[1], 10, 64)
	minor, errMinor := strconv.ParseUint(m[2], 10, 64)
	patch, errPatch := strconv.ParseUint(m[3], 10, 64)

	if errMajor != nil || errMinor != nil || errPatch != nil {
		return triple{}, false
	}

	return triple{major: major, minor: minor, patch: patch, pre: m[4], build: m[5]}, true
}

func formatSemVer(t triple) string {
	s := fmt.Sprintf("%d.%d.%d", t.major, t.minor, t.patch)

	if t.pre != "" {
		s += "-" + t.pre
	}

	if t.build != "" {
		s += "+" + t.build
	}

	return s
}
