package pgguardtest

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/xgx-io/pgguard"
)

// Outcome is how control came back to the host's outermost frame.
type Outcome int

const (
	// Returned: the call returned normally.
	Returned Outcome = iota + 1
	// Errored: the host jumped to its recovery point with an error pending.
	Errored
	// Terminated: a FATAL or PANIC report ended the backend.
	Terminated
	// Crashed: a Go panic escaped into the host.
	Crashed
)

func (o Outcome) String() string {
	switch o {
	case Returned:
		return "returned"
	case Errored:
		return "errored"
	case Terminated:
		return "terminated"
	case Crashed:
		return "crashed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result describes one call from the host into Go code.
type Result struct {
	Outcome Outcome
	// Error is the reported error for Errored, the terminating report for
	// Terminated.
	Error Diag
	// Crash is the Go panic value for Crashed.
	Crash any
	// Arena is the active arena when control came back.
	Arena pgguard.Arena
}

// Call runs fn as the host's outermost frame would: a jump lands here with
// its error pending, the error is taken and flushed, and the arena active
// at entry is restored. A Go panic is recorded as Crashed instead of being
// propagated.
//
// fn runs on a goroutine of its own, locked to its OS thread like a host
// backend. A FATAL or PANIC report ends that goroutine; Call still returns.
func (h *Host) Call(fn func()) (res Result) {
	entry := h.active
	h.terminated = nil
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		returned := false
		defer func() {
			if returned {
				return
			}
			r := recover()
			res.Arena = h.active
			switch {
			case r == nil && h.terminated != nil:
				res.Outcome = Terminated
				res.Error = *h.terminated
			case r == nil:
				res.Outcome = Crashed
				res.Crash = errGoexit
			default:
				if _, ok := r.(jump); ok {
					res.Outcome = Errored
					if h.pending == nil {
						h.violate("jump to the recovery point without a pending error")
					} else {
						res.Error = *h.pending
					}
					h.FlushErrorState()
					break
				}
				res.Outcome = Crashed
				res.Crash = r
			}
			h.active = entry
		}()
		fn()
		returned = true
		res = Result{Outcome: Returned, Arena: h.active}
	}()
	<-done
	return res
}

// errGoexit is the Crash value when fn called runtime.Goexit without a
// terminating report.
var errGoexit = errors.New("runtime.Goexit outside a terminating report")

// CallValue is Call for a function with a result. The value is the zero
// value unless the call returned.
func CallValue[T any](h *Host, fn func() T) (T, Result) {
	var v T
	res := h.Call(func() { v = fn() })
	return v, res
}
