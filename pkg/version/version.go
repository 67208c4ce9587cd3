// Package version implements the unified version model used to key the
// content-addressed store: SemVer, CalVer, and partial "prefix" versions
// compare under one total order.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which concrete shape a Version holds.
type Kind int

const (
	// KindSemVer is a standard major.minor.patch[-pre][+build] version.
	KindSemVer Kind = iota
	// KindCalVer is a calendar-based year.month[.day] version.
	KindCalVer
	// KindPartial is a prefix version used for matching (e.g. "18", "1.2").
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindSemVer:
		return "semver"
	case KindCalVer:
		return "calver"
	case KindPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// triple is the normalized (major, minor, patch) comparison key shared by
// SemVer and CalVer. Partial compares lexicographically by defined
// components instead, with undefined components sorting as zero.
type triple struct {
	major, minor, patch uint64
	pre, build          string
}

// Version is the tagged variant described in spec.md §3: a concrete SemVer,
// a concrete CalVer (internally a SemVer triple), or a Partial prefix.
type Version struct {
	kind     Kind
	concrete triple  // valid for KindSemVer and KindCalVer
	partial  Partial // valid for KindPartial
}

// Partial is a prefix version: each numeric component (Major, Minor, Patch),
// if present, must equal the corresponding component of a Version for
// Matches to hold. Pre, Build and LTS are not compared by Matches.
type Partial struct {
	Major, Minor, Patch *uint64
	Pre, Build          *string
	LTS                 bool
}

// Kind reports which shape this Version holds.
func (v Version) Kind() Kind { return v.kind }

// AsPartial returns the Partial payload and true if this Version is a Partial.
func (v Version) AsPartial() (Partial, bool) {
	if v.kind != KindPartial {
		return Partial{}, false
	}

	return v.partial, true
}

// Major, Minor, Patch, Pre, Build return the normalized triple components
// for SemVer and CalVer versions. They are zero (and meaningless) for Partial.
func (v Version) Major() uint64 { return v.concrete.major }
func (v Version) Minor() uint64 { return v.concrete.minor }
func (v Version) Patch() uint64 { return v.concrete.patch }
func (v Version) Pre() string   { return v.concrete.pre }
func (v Version) Build() string { return v.concrete.build }

// Parse tries SemVer, then CalVer, then Partial, in that order, and returns
// the first grammar that accepts s.
func Parse(s string) (Version, error) {
	if t, ok := parseSemVer(s); ok {
		return Version{kind: KindSemVer, concrete: t}, nil
	}

	if t, ok := parseCalVer(s); ok {
		return Version{kind: KindCalVer, concrete: t}, nil
	}

	p, err := parsePartial(s)
	if err != nil {
		return Version{}, fmt.Errorf("parse version %q: %w", s, err)
	}

	return Version{kind: KindPartial, partial: p}, nil
}

// MustParse is Parse but panics on error; useful in tests and constant tables.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

// String renders the Version in its native grammar.
func (v Version) String() string {
	switch v.kind {
	case KindCalVer:
		return formatCalVer(v.concrete)
	case KindPartial:
		return v.partial.String()
	default:
		return formatSemVer(v.concrete)
	}
}

func (p Partial) String() string {
	var b strings.Builder

	first := true

	writeNum := func(n *uint64) {
		if n == nil {
			return
		}

		if !first {
			b.WriteByte('.')
		}

		b.WriteString(strconv.FormatUint(*n, 10))

		first = false
	}

	writeNum(p.Major)
	writeNum(p.Minor)
	writeNum(p.Patch)

	if p.Pre != nil {
		b.WriteByte('-')
		b.WriteString(*p.Pre)
	}

	if p.Build != nil {
		b.WriteByte('+')
		b.WriteString(*p.Build)
	}

	if p.LTS {
		b.WriteString("lts")
	}

	return b.String()
}

// Matches reports whether every defined numeric component of p (Major,
// Minor, Patch) equals the corresponding component of v (spec.md §3
// "Partial.matches"). Pre, Build and LTS are ignored.
func (p Partial) Matches(v Version) bool {
	var major, minor, patch uint64

	if pv, ok := v.AsPartial(); ok {
		major, minor, patch = partialComponent(pv.Major), partialComponent(pv.Minor), partialComponent(pv.Patch)
	} else {
		major, minor, patch = v.Major(), v.Minor(), v.Patch()
	}

	if p.Major != nil && *p.Major != major {
		return false
	}

	if p.Minor != nil && *p.Minor != minor {
		return false
	}

	if p.Patch != nil && *p.Patch != patch {
		return false
	}

	return true
}

func partialComponent(n *uint64) uint64 {
	if n == nil {
		return 0
	}

	return *n
}

// Compare implements the total order described in spec.md §3 and §4.E:
// within a kind, canonical semver ordering on the triple (pre-release per
// semver); across kinds, the underlying triple with undefined Partial
// components sorting as zero.
func Compare(a, b Version) int {
	ta, tb := a.comparisonTriple(), b.comparisonTriple()

	return compareTriple(ta, tb)
}

// Less is a convenience wrapper around Compare for use with sort.Slice.
func Less(a, b Version) bool { return Compare(a, b) < 0 }

func (v Version) comparisonTriple() triple {
	if v.kind == KindPartial {
		return triple{
			major: partialComponent(v.partial.Major),
			minor: partialComponent(v.partial.Minor),
			patch: partialComponent(v.partial.Patch),
			pre:   derefOr(v.partial.Pre, ""),
			build: derefOr(v.partial.Build, ""),
		}
	}

	return v.concrete
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}

	return *s
}

func compareTriple(a, b triple) int {
	if a.major != b.major {
		return cmpUint(a.major, b.major)
	}

	if a.minor != b.minor {
		return cmpUint(a.minor, b.minor)
	}

	if a.patch != b.patch {
		return cmpUint(a.patch, b.patch)
	}

	return comparePre(a.pre, b.pre)
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePre implements semver precedence: no pre-release outranks any
// pre-release; otherwise identifiers compare dot-separated, numeric
// identifiers numerically, alphanumeric lexically, with a numeric
// identifier always less than an alphanumeric one.
func comparePre(a, b string) int {
	if a == "" && b == "" {
		return 0
	}

	if a == "" {
		return 1
	}

	if b == "" {
		return -1
	}

	ai, bi := strings.Split(a, "."), strings.Split(b, ".")

	for i := 0; i < len(ai) && i < len(bi); i++ {
		if c := comparePreIdent(ai[i], bi[i]); c != 0 {
			return c
		}
	}

	return cmpUint(uint64(len(ai)), uint64(len(bi)))
}

func comparePreIdent(a, b string) int {
	an, aErr := strconv.ParseUint(a, 10, 64)
	bn, bErr := strconv.ParseUint(b, 10, 64)

	switch {
	case aErr == nil && bErr == nil:
		return cmpUint(an, bn)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
