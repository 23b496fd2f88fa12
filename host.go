// host.go — the host process as seen from Go.
//
// The bridge never reaches into the host directly; everything it needs is
// one of the calls below, which map 1:1 onto the host's C entry points
// (MemoryContextSwitchTo, pstrdup, pfree, errstart/errfinish and the err*
// field setters, pg_re_throw, CopyErrorData, FreeErrorData, FlushErrorState,
// sigsetjmp around a host call). Implementations: the cgo binding of the
// extension and pgguardtest.Host for tests.
package pgguard

import "fmt"

// Arena identifies a host allocation context. Zero is "no arena".
type Arena uintptr

// CString is a NUL-terminated string allocated by the host. Zero is NULL.
type CString uintptr

// HostVersion is the host's major version number.
type HostVersion int

// Supported host major versions.
const (
	MinHostVersion HostVersion = 11
	MaxHostVersion HostVersion = 17
)

// Valid reports whether v is a supported host major version.
func (v HostVersion) Valid() bool { return v >= MinHostVersion && v <= MaxHostVersion }

func (v HostVersion) hasWarningClientOnly() bool { return v >= 14 }

// Convention returns the diagnostic calling convention of version v.
func (v HostVersion) Convention() Convention {
	if v >= 13 {
		return ConventionModern
	}
	return ConventionLegacy
}

func (v HostVersion) String() string { return fmt.Sprintf("pg%d", int(v)) }

// Convention selects the shape of the host's diagnostic construction calls.
// It is chosen once per deployment target and never changes at runtime.
type Convention uint8

const (
	// ConventionModern: errstart(level, domain) gates the report; location is
	// passed to errfinish(file, line, func).
	ConventionModern Convention = iota + 1
	// ConventionLegacy: errstart(level, file, line, func, domain) takes the
	// location; errfinish takes none.
	ConventionLegacy
)

func (c Convention) String() string {
	switch c {
	case ConventionModern:
		return "modern"
	case ConventionLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Convention(%d)", uint8(c))
	}
}

// ErrorData is a snapshot of the host's pending error descriptor, as
// produced by CopyErrorData.
type ErrorData struct {
	Level    int32 // raw host severity
	Code     int32 // raw MAKE_SQLSTATE encoding
	Message  string
	Detail   string
	Hint     string
	Context  string
	File     string
	Line     int32
	Function string

	arena Arena
}

// Arena returns the allocation context the snapshot was copied into.
func (d *ErrorData) Arena() Arena { return d.arena }

// NewErrorData returns a snapshot owned by arena a. Host implementations use
// it from CopyErrorData.
func NewErrorData(a Arena, src ErrorData) *ErrorData {
	src.arena = a
	return &src
}

// Host is the collaborator interface of the bridge. All methods must be
// called from the host's thread.
//
// Calls documented as "never returns" leave by the host's non-local jump. A
// Go implementation that cannot jump must at least not return normally.
type Host interface {
	// CurrentArena returns the active allocation context.
	CurrentArena() Arena
	// SwitchArena makes a the active allocation context and returns the
	// previous one (MemoryContextSwitchTo).
	SwitchArena(a Arena) Arena
	// ErrorArena is the host's dedicated error context.
	ErrorArena() Arena
	// TopTransactionArena outlives the host's error state flush.
	TopTransactionArena() Arena

	// PStrdup copies s into the active arena.
	PStrdup(s string) CString
	// PFree releases a string allocated by PStrdup.
	PFree(p CString)

	// ErrStart begins a diagnostic under the modern convention and reports
	// whether the level is enabled.
	ErrStart(level int32, domain CString) bool
	// ErrStartAt begins a diagnostic under the legacy convention.
	ErrStartAt(level int32, file CString, line int32, function CString, domain CString) bool
	ErrCode(code int32)
	// ErrMsg, ErrDetail, ErrHint and ErrContextMsg attach one field. The
	// binding passes a constant "%s" format with arg as its only argument,
	// so text is never interpreted as a format string.
	ErrMsg(arg CString)
	ErrDetail(arg CString)
	ErrHint(arg CString)
	ErrContextMsg(arg CString)
	// ErrFinish completes a modern diagnostic. Never returns at ERROR and above.
	ErrFinish(file CString, line int32, function CString)
	// ErrFinishLegacy completes a legacy diagnostic. Never returns at ERROR
	// and above.
	ErrFinishLegacy()

	// ReThrow re-drives the pending error through the host's recovery point
	// (pg_re_throw). Never returns. Must be called with the error arena
	// active.
	ReThrow()

	// CopyErrorData snapshots the pending error into the active arena.
	CopyErrorData() *ErrorData
	// FreeErrorData releases a snapshot.
	FreeErrorData(d *ErrorData)
	// FlushErrorState discards the pending error and resets the error arena.
	FlushErrorState()

	// Protect runs fn with a saved execution context and reports whether the
	// host jumped back to it. When jumped is true the host's error is pending.
	Protect(fn func()) (jumped bool)
}
