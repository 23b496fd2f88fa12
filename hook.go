// hook.go — thread-scoped capture of panic locations.
//
// A recovered panic value says nothing about where the panic started. The
// hook records that site while the panicking frames are still on the stack
// (Go runs deferred calls before unwinding them) and parks it in a cell of
// the current OS thread. The classifier takes it when it normalises a
// generic panic.
//
// Lifecycle of a cell:
//   - written only by the hook, last write wins;
//   - read and cleared only by the classifier (takePanicLocation);
//   - empty again until the next panic on that thread.
package pgguard

import (
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	hookInstalled atomic.Bool
	hookBacktrace atomic.Bool

	// panicCells maps OS thread id → Location. Each key is only touched by
	// its own thread; the map itself is shared.
	panicCells sync.Map
)

// HookOption configures InstallPanicHook.
type HookOption func(*hookConfig)

type hookConfig struct {
	backtrace bool
}

// CaptureBacktrace controls whether the hook captures a backtrace along with
// the panic site. The default follows PGGUARD_BACKTRACE ("1" or "full").
func CaptureBacktrace(on bool) HookOption {
	return func(c *hookConfig) { c.backtrace = on }
}

// BacktraceFromEnv reports whether PGGUARD_BACKTRACE asks for backtraces.
func BacktraceFromEnv() bool {
	switch strings.ToLower(os.Getenv("PGGUARD_BACKTRACE")) {
	case "1", "full", "true":
		return true
	default:
		return false
	}
}

// InstallPanicHook registers the panic-location hook for the whole process.
// Call it once, at extension load; installing twice replaces the options
// and is not guarded.
func InstallPanicHook(opts ...HookOption) {
	cfg := hookConfig{backtrace: BacktraceFromEnv()}
	for _, opt := range opts {
		opt(&cfg)
	}
	hookBacktrace.Store(cfg.backtrace)
	hookInstalled.Store(true)
}

// panicHook is called by catchUnwind from its deferred recover, before the
// panicking frames are released. Already-classified failures are being
// resumed, not started, and explicit reports carry their own location;
// neither touches the cell.
func panicHook(payload any) {
	if !hookInstalled.Load() {
		return
	}
	switch payload.(type) {
	case CaughtFailure, Report, *Report, *ErrorReport:
		return
	}
	loc, ok := panicSite(hookBacktrace.Load())
	if !ok {
		panicCells.Delete(threadID())
		return
	}
	panicCells.Store(threadID(), loc)
}

// takePanicLocation reads and clears the current thread's cell.
func takePanicLocation() Location {
	if v, ok := panicCells.LoadAndDelete(threadID()); ok {
		return v.(Location)
	}
	return UnknownLocation()
}

// panicSite finds the frame that called panic (or faulted): the first
// non-runtime frame below runtime.gopanic on the current stack.
func panicSite(backtrace bool) (Location, bool) {
	pc := make([]uintptr, defaultMaxDepth)
	n := runtime.Callers(2, pc)
	if n == 0 {
		return Location{}, false
	}
	stk := resolveFrames(pc[:n])

	start := -1
	for i, fr := range stk {
		if fr.Function == "runtime.gopanic" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return Location{}, false
	}
	for start < len(stk) && strings.HasPrefix(stk[start].Function, "runtime.") {
		start++
	}
	if start >= len(stk) {
		return Location{}, false
	}

	loc := locationFromFrame(stk[start])
	if backtrace {
		bt := make(Stack, len(stk)-start)
		copy(bt, stk[start:])
		loc.Backtrace = bt
	}
	return loc, true
}
