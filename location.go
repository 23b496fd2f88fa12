// location.go — call-site locations and selective stack capture.
//
// Design goals:
//   - Use runtime.Callers + runtime.CallersFrames for accurate frame
//     resolution (handles inlining correctly).
//   - A Location is always present on a report; "unknown" is a value, not nil.
//   - Bounded depth; capture costs only on failure paths.
package pgguard

import (
	"fmt"
	"runtime"
	"strings"
)

// Frame represents a single call site in a stack trace.
type Frame struct {
	PC       uintptr // program counter of the call return
	File     string  // absolute file path (as provided by runtime)
	Line     int     // line number
	Function string  // fully-qualified function name (pkg.Func or method)
}

// Stack is a slice of Frames from most recent call outward.
type Stack []Frame

// String renders one frame per line, most recent first.
func (s Stack) String() string {
	var sb strings.Builder
	for i, fr := range s {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "  %s\n      %s:%d", fr.Function, fr.File, fr.Line)
	}
	return sb.String()
}

const (
	// defaultMaxDepth bounds capture on failure paths.
	defaultMaxDepth = 64

	unknownFile = "<unknown>"
)

// captureStackDefault captures a stack skipping 'skip' frames beyond its
// caller, with the default depth bound.
//
// Skip model for a typical call chain:
//
//	newDefect → captureStackDefault → captureStack → runtime.Callers
//
// captureStack adds +3 (runtime.Callers, captureStack, captureStackDefault)
// so skip=0 starts at the caller of captureStackDefault.
func captureStackDefault(skip int) Stack {
	return captureStack(skip, defaultMaxDepth)
}

// captureStack captures up to maxDepth frames, skipping 'skip' initial frames.
func captureStack(skip, maxDepth int) Stack {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	pc := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+3, pc)
	if n == 0 {
		return nil
	}
	return resolveFrames(pc[:n])
}

func resolveFrames(pc []uintptr) Stack {
	frames := runtime.CallersFrames(pc)
	out := make(Stack, 0, len(pc))
	for {
		fr, more := frames.Next()
		out = append(out, Frame{
			PC:       fr.PC,
			File:     fr.File,
			Line:     fr.Line,
			Function: fr.Function,
		})
		if !more {
			break
		}
	}
	return out
}

// Location is where a diagnostic originated. Go's runtime does not expose
// column numbers, so Column is 0 for sites captured from Go frames; it is
// carried because the host's own locations and foreign reports may set it.
type Location struct {
	File      string
	Line      uint32
	Column    uint32
	Function  string // empty when unknown
	Backtrace Stack  // nil unless captured
}

// UnknownLocation is the location used when no call-site information was
// captured: "<unknown>":0:0 without a function name.
func UnknownLocation() Location {
	return Location{File: unknownFile}
}

// IsUnknown reports whether l carries no call-site information.
func (l Location) IsUnknown() bool {
	return (l.File == "" || l.File == unknownFile) && l.Line == 0 && l.Column == 0
}

// String renders "func, file:line:col" (or "file:line:col" without a
// function), followed by the backtrace on new lines when one was captured.
func (l Location) String() string {
	file := l.File
	if file == "" {
		file = unknownFile
	}
	var sb strings.Builder
	if l.Function != "" {
		fmt.Fprintf(&sb, "%s, ", l.Function)
	}
	fmt.Fprintf(&sb, "%s:%d:%d", file, l.Line, l.Column)
	if len(l.Backtrace) > 0 {
		sb.WriteByte('\n')
		sb.WriteString(l.Backtrace.String())
	}
	return sb.String()
}

// locationFromFrame converts a resolved frame into a Location.
func locationFromFrame(fr Frame) Location {
	if fr.File == "" {
		return UnknownLocation()
	}
	return Location{
		File:     fr.File,
		Line:     uint32(max(fr.Line, 0)),
		Function: fr.Function,
	}
}

// callerLocation returns the location of the caller 'skip' frames above the
// function calling callerLocation.
func callerLocation(skip int) Location {
	pc := make([]uintptr, skip+4)
	n := runtime.Callers(2, pc)
	if n == 0 {
		return UnknownLocation()
	}
	frames := runtime.CallersFrames(pc[:n])
	for i := 0; ; i++ {
		fr, more := frames.Next()
		if i == skip {
			return locationFromFrame(Frame{PC: fr.PC, File: fr.File, Line: fr.Line, Function: fr.Function})
		}
		if !more {
			return UnknownLocation()
		}
	}
}
