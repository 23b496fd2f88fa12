// location_test.go — verification of stack capture and call-site locations.
package pgguard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:noinline
func stackGrab(skipExtra int) Stack {
	return captureStackDefault(skipExtra + 1)
}

//go:noinline
func stackTestLevel2(skipExtra int) Stack {
	return stackGrab(skipExtra)
}

//go:noinline
func stackTestLevel1(skipExtra int) Stack {
	return stackTestLevel2(skipExtra)
}

//go:noinline
func locateMe() Location {
	return callerLocation(0)
}

//go:noinline
func locateCaller() Location {
	return callerLocation(1)
}

func TestCaptureStack_UsesDefaultWhenMaxDepthZero(t *testing.T) {
	t.Parallel()

	s := captureStack(0, 0)
	require.NotEmpty(t, s)
	assert.LessOrEqual(t, len(s), defaultMaxDepth)
}

func TestCaptureStack_RespectsMaxDepthLimit(t *testing.T) {
	t.Parallel()

	assert.LessOrEqual(t, len(captureStack(0, 2)), 2)
}

func TestCaptureStackDefault_SkipSemantics(t *testing.T) {
	t.Parallel()

	s0 := stackTestLevel1(0)
	require.NotEmpty(t, s0)
	assert.True(t, strings.HasSuffix(s0[0].Function, ".stackTestLevel2"), s0[0].Function)

	s1 := stackTestLevel1(1)
	require.NotEmpty(t, s1)
	assert.True(t, strings.HasSuffix(s1[0].Function, ".stackTestLevel1"), s1[0].Function)
}

func TestStack_String(t *testing.T) {
	t.Parallel()

	s := Stack{{Function: "pkg.f", File: "/src/f.go", Line: 7}, {Function: "pkg.g", File: "/src/g.go", Line: 9}}
	assert.Equal(t, "  pkg.f\n      /src/f.go:7\n  pkg.g\n      /src/g.go:9", s.String())
}

func TestCallerLocation(t *testing.T) {
	t.Parallel()

	loc := locateMe()
	assert.True(t, strings.HasSuffix(loc.Function, ".locateMe"), loc.Function)
	assert.True(t, strings.HasSuffix(loc.File, "location_test.go"), loc.File)
	assert.NotZero(t, loc.Line)
	assert.Zero(t, loc.Column)

	loc = locateCaller()
	assert.True(t, strings.HasSuffix(loc.Function, ".TestCallerLocation"), loc.Function)
}

func TestLocation_Unknown(t *testing.T) {
	t.Parallel()

	u := UnknownLocation()
	assert.True(t, u.IsUnknown())
	assert.Equal(t, "<unknown>:0:0", u.String())
	assert.True(t, Location{}.IsUnknown())
	assert.False(t, Location{File: "a.go", Line: 1}.IsUnknown())
}

func TestLocation_String(t *testing.T) {
	t.Parallel()

	loc := Location{File: "/src/a.go", Line: 12, Function: "pkg.f"}
	assert.Equal(t, "pkg.f, /src/a.go:12:0", loc.String())

	loc.Backtrace = Stack{{Function: "pkg.f", File: "/src/a.go", Line: 12}}
	assert.Equal(t, "pkg.f, /src/a.go:12:0\n  pkg.f\n      /src/a.go:12", loc.String())
}
