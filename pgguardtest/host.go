// Package pgguardtest provides an in-memory host for testing code built on
// pgguard. It follows the host's diagnostic protocol closely enough to catch
// misuse: allocations are tracked per arena, strings must be live when
// handed over, and contract breaks are recorded as violations.
//
// The host's non-local jump is a panic with a private value that only the
// host's own recovery points (Protect and Call) recover. A FATAL or PANIC
// report ends the calling goroutine with runtime.Goexit, which no recover
// can stop, the way the real host exits the process.
package pgguardtest

import (
	"fmt"
	"runtime"

	"github.com/xgx-io/pgguard"
)

// Arenas the host starts with.
const (
	TopArena            pgguard.Arena = 1
	ErrorArena          pgguard.Arena = 2
	TopTransactionArena pgguard.Arena = 3
	FunctionArena       pgguard.Arena = 4
)

// Diag is a diagnostic the host finished.
type Diag struct {
	Level    pgguard.Level
	Code     pgguard.Code
	Message  string
	Detail   string
	Hint     string
	Context  string
	File     string
	Line     int
	Function string
}

type alloc struct {
	s     string
	arena pgguard.Arena
}

// jump is the panic value of the host's non-local jump.
type jump struct{}

// Host is a fake host. Not safe for concurrent use, like the real one.
type Host struct {
	// Version is the host major version used to decode levels.
	Version pgguard.HostVersion
	// MinLevel is the lowest level ErrStart accepts, as in log_min_messages.
	// ERROR and above are always accepted.
	MinLevel pgguard.Level

	active  pgguard.Arena
	allocs  map[pgguard.CString]alloc
	nextPtr pgguard.CString

	building   *Diag
	pending    *Diag
	terminated *Diag
	copies     int

	emitted    []Diag
	trace      []string
	violations []string
}

// NewHost returns a host of the given major version with FunctionArena
// active and every level enabled.
func NewHost(v pgguard.HostVersion) *Host {
	return &Host{
		Version:  v,
		MinLevel: pgguard.Debug5,
		active:   FunctionArena,
		allocs:   map[pgguard.CString]alloc{},
		nextPtr:  0x1000,
	}
}

// Emitted returns the diagnostics the host finished, in order.
func (h *Host) Emitted() []Diag { return append([]Diag(nil), h.emitted...) }

// Trace returns the protocol calls made so far, e.g. "errstart", "errmsg".
func (h *Host) Trace() []string { return append([]string(nil), h.trace...) }

// Violations returns the contract breaks the host noticed.
func (h *Host) Violations() []string { return append([]string(nil), h.violations...) }

// Pending returns the error waiting for re-throw or flush, if any.
func (h *Host) Pending() (Diag, bool) {
	if h.pending == nil {
		return Diag{}, false
	}
	return *h.pending, true
}

// Live counts strings allocated in arena a that were not freed.
func (h *Host) Live(a pgguard.Arena) int {
	n := 0
	for _, al := range h.allocs {
		if al.arena == a {
			n++
		}
	}
	return n
}

// OutstandingCopies counts CopyErrorData snapshots not yet freed.
func (h *Host) OutstandingCopies() int { return h.copies }

// ResetTrace clears the protocol trace.
func (h *Host) ResetTrace() { h.trace = nil }

func (h *Host) violate(format string, args ...any) {
	h.violations = append(h.violations, fmt.Sprintf(format, args...))
}

func (h *Host) record(call string) { h.trace = append(h.trace, call) }

func (h *Host) CurrentArena() pgguard.Arena { return h.active }

func (h *Host) SwitchArena(a pgguard.Arena) pgguard.Arena {
	prev := h.active
	h.active = a
	return prev
}

func (h *Host) ErrorArena() pgguard.Arena          { return ErrorArena }
func (h *Host) TopTransactionArena() pgguard.Arena { return TopTransactionArena }

func (h *Host) PStrdup(s string) pgguard.CString {
	h.nextPtr += 0x10
	h.allocs[h.nextPtr] = alloc{s: s, arena: h.active}
	return h.nextPtr
}

func (h *Host) PFree(p pgguard.CString) {
	h.record("pfree")
	if _, ok := h.allocs[p]; !ok {
		h.violate("pfree of unknown pointer %#x", uintptr(p))
		return
	}
	delete(h.allocs, p)
}

// str reads a live string; NULL reads as "".
func (h *Host) str(p pgguard.CString, what string) string {
	if p == 0 {
		return ""
	}
	al, ok := h.allocs[p]
	if !ok {
		h.violate("%s: dangling pointer %#x", what, uintptr(p))
		return ""
	}
	return al.s
}

func (h *Host) enabled(level pgguard.Level) bool {
	return level.Aborts() || level >= h.MinLevel
}

func (h *Host) ErrStart(level int32, _ pgguard.CString) bool {
	h.record("errstart")
	if h.Version.Convention() != pgguard.ConventionModern {
		h.violate("errstart(level, domain) called on %s", h.Version)
	}
	l := pgguard.LevelFromRaw(level, h.Version)
	if !h.enabled(l) {
		return false
	}
	h.building = &Diag{Level: l}
	return true
}

func (h *Host) ErrStartAt(level int32, file pgguard.CString, line int32, function, _ pgguard.CString) bool {
	h.record("errstart")
	if h.Version.Convention() != pgguard.ConventionLegacy {
		h.violate("errstart(level, file, line, func, domain) called on %s", h.Version)
	}
	l := pgguard.LevelFromRaw(level, h.Version)
	if !h.enabled(l) {
		return false
	}
	h.building = &Diag{
		Level:    l,
		File:     h.str(file, "errstart file"),
		Line:     int(line),
		Function: h.str(function, "errstart function"),
	}
	return true
}

func (h *Host) diag(call string) *Diag {
	h.record(call)
	if h.building == nil {
		h.violate("%s outside errstart/errfinish", call)
		return &Diag{}
	}
	return h.building
}

func (h *Host) ErrCode(code int32) { h.diag("errcode").Code = pgguard.CodeFromRaw(code) }

func (h *Host) ErrMsg(arg pgguard.CString) { h.diag("errmsg").Message = h.str(arg, "errmsg") }

func (h *Host) ErrDetail(arg pgguard.CString) { h.diag("errdetail").Detail = h.str(arg, "errdetail") }

func (h *Host) ErrHint(arg pgguard.CString) { h.diag("errhint").Hint = h.str(arg, "errhint") }

func (h *Host) ErrContextMsg(arg pgguard.CString) {
	h.diag("errcontext_msg").Context = h.str(arg, "errcontext_msg")
}

func (h *Host) ErrFinish(file pgguard.CString, line int32, function pgguard.CString) {
	d := h.diag("errfinish")
	d.File = h.str(file, "errfinish file")
	d.Line = int(line)
	d.Function = h.str(function, "errfinish function")
	h.finish()
}

func (h *Host) ErrFinishLegacy() {
	h.diag("errfinish")
	h.finish()
}

// finish completes the diagnostic under construction and jumps or
// terminates at ERROR and above.
func (h *Host) finish() {
	d := *h.building
	h.building = nil
	h.emitted = append(h.emitted, d)
	switch {
	case d.Level >= pgguard.Fatal:
		h.terminated = &d
		runtime.Goexit()
	case d.Level == pgguard.Error:
		h.pending = &d
		panic(jump{})
	}
}

// Raise runs the host's own ereport at level: the way a host function
// reports an error. At ERROR and above it does not return.
func (h *Host) Raise(level pgguard.Level, code pgguard.Code, msg string) {
	if !h.enabled(level) {
		return
	}
	h.building = &Diag{Level: level, Code: code, Message: msg, File: "host.c", Function: "host_function"}
	h.finish()
}

func (h *Host) ReThrow() {
	h.record("rethrow")
	if h.active != ErrorArena {
		h.violate("re-throw with arena %d active", h.active)
	}
	if h.pending == nil {
		h.violate("re-throw without a pending error")
	}
	panic(jump{})
}

func (h *Host) CopyErrorData() *pgguard.ErrorData {
	h.record("copyerrordata")
	if h.active == ErrorArena {
		h.violate("CopyErrorData with the error arena active")
	}
	if h.pending == nil {
		h.violate("CopyErrorData without a pending error")
		return pgguard.NewErrorData(h.active, pgguard.ErrorData{})
	}
	h.copies++
	d := h.pending
	return pgguard.NewErrorData(h.active, pgguard.ErrorData{
		Level:    d.Level.Raw(h.Version),
		Code:     d.Code.Raw(),
		Message:  d.Message,
		Detail:   d.Detail,
		Hint:     d.Hint,
		Context:  d.Context,
		File:     d.File,
		Line:     int32(d.Line), //nolint:gosec // test data
		Function: d.Function,
	})
}

func (h *Host) FreeErrorData(d *pgguard.ErrorData) {
	h.record("freeerrordata")
	if d == nil {
		h.violate("FreeErrorData(nil)")
		return
	}
	h.copies--
}

// FlushErrorState discards the pending error and resets the error arena.
func (h *Host) FlushErrorState() {
	h.record("flusherrorstate")
	h.pending = nil
	h.building = nil
	for p, al := range h.allocs {
		if al.arena == ErrorArena {
			delete(h.allocs, p)
		}
	}
}

// Protect is the host's save-context primitive around a host call.
func (h *Host) Protect(fn func()) (jumped bool) {
	done := false
	defer func() {
		if done {
			return
		}
		r := recover()
		if r == nil {
			return // runtime.Goexit
		}
		if _, ok := r.(jump); ok {
			jumped = true
			return
		}
		panic(r)
	}()
	fn()
	done = true
	return false
}

var _ pgguard.Host = (*Host)(nil)
