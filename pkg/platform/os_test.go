package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOS_AcceptsDarwinAndMacos(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OSMacOS, ParseOS("darwin"))
	assert.Equal(t, OSMacOS, ParseOS("macos"))
	assert.Equal(t, OSMacOS, ParseOS("MacOS"))
}

func TestParseOS_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OSUnknown, ParseOS("plan9"))
}

func TestCurrentOS_MatchesRuntime(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, OSUnknown, CurrentOS())
}
