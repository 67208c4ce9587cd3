package version

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Kind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Kind
	}{
		{"semver", "1.2.3", KindSemVer},
		{"semver with v prefix", "v1.2.3", KindSemVer},
		{"semver prerelease", "1.2.3-rc.1+build.5", KindSemVer},
		{"calver", "2024.01", KindCalVer},
		{"calver with day", "2024.01.15", KindCalVer},
		{"calver two digit year", "24-01", KindCalVer},
		{"partial major", "18", KindPartial},
		{"partial major minor", "1.2", KindPartial},
		{"partial lts", "18lts", KindPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Kind())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse("not-a-version-!!")
	assert.Error(t, err)
}

func TestCalVer_Display_RepadsYear(t *testing.T) {
	t.Parallel()

	v := MustParse("24-1")
	assert.Equal(t, "2024.01", v.String())
}

func TestCalVer_DayBounds(t *testing.T) {
	t.Parallel()

	_, ok := parseCalVer("2024.01.32")
	assert.False(t, ok, "day 32 must not parse as CalVer")

	_, ok = parseCalVer("2024.13")
	assert.False(t, ok, "month 13 must not parse as CalVer")
}

func TestPartial_Matches(t *testing.T) {
	t.Parallel()

	p, err := parsePartial("1.2")
	require.NoError(t, err)

	match := MustParse("1.2.9")
	mismatch := MustParse("1.3.0")

	assert.True(t, p.Matches(match))
	assert.False(t, p.Matches(mismatch))
}

func TestVersion_Ordering_TotalOrder(t *testing.T) {
	t.Parallel()

	inputs := []string{"2.0.0", "1.0.0", "1.2.0", "1.10.0", "1.2.0-alpha", "1.2.0-alpha.1", "1.2.0-beta"}

	versions := make([]Version, len(inputs))
	for i, s := range inputs {
		versions[i] = MustParse(s)
	}

	sort.Slice(versions, func(i, j int) bool { return Less(versions[i], versions[j]) })

	got := make([]string, len(versions))
	for i, v := range versions {
		got[i] = v.String()
	}

	want := []string{"1.0.0", "1.2.0-alpha", "1.2.0-alpha.1", "1.2.0-beta", "1.2.0", "1.10.0", "2.0.0"}
	assert.Equal(t, want, got)
}

func TestVersion_Compare_NoPrereleaseOutranksPrerelease(t *testing.T) {
	t.Parallel()

	release := MustParse("1.0.0")
	prerelease := MustParse("1.0.0-rc.1")

	assert.Positive(t, Compare(release, prerelease))
	assert.Negative(t, Compare(prerelease, release))
	assert.Zero(t, Compare(release, MustParse("1.0.0")))
}

func TestVersion_CrossKindComparison(t *testing.T) {
	t.Parallel()

	// An undefined Partial component sorts as zero.
	partial := MustParse("1")
	concrete := MustParse("1.0.0")

	assert.Zero(t, Compare(partial, concrete))
}
