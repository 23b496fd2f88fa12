// guard.go — the boundaries between host code and Go code.
//
// Guard wraps Go code the host calls into. It must sit at the outermost edge
// of that code: nothing between the host's frame and Guard may hold state
// that needs unwinding, because a host-originated failure leaves Guard by
// the host's own non-local jump.
//
// CallHost wraps a call from Go into the host. A host error raised inside
// it comes back as a panic with HostOriginated, which unwinds the Go frames
// normally until a Guard re-drives it.
package pgguard

import (
	"runtime"
)

// catchUnwind runs body and recovers a panic escaping it. The hook sees the
// payload while the panicking frames are still on the stack. runtime.Goexit
// is not a panic: recover yields nil and the goroutine keeps exiting.
func catchUnwind[R any](body func() R) (r R, payload any, panicked bool) {
	panicked = true
	defer func() {
		if !panicked {
			return
		}
		if payload = recover(); payload == nil {
			return
		}
		panicHook(payload)
	}()
	r = body()
	panicked = false
	return r, nil, false
}

// Guard runs body on behalf of the host and returns its value. A failure
// never returns: a host-originated one is re-driven through the host, any
// other is classified and emitted as a host diagnostic at ERROR or above.
func Guard[R any](be *Backend, body func() R) R {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	r, payload, panicked := catchUnwind(body)
	if !panicked {
		be.metrics.outcome(OutcomeReturn)
		return r
	}
	be.fail(payload)
	panic("unreachable")
}

// GuardErr is Guard for bodies that return an error. A non-nil error is
// raised at ERROR, keeping its code when it is an *ErrorReport. A plain
// error is located at the call of GuardErr.
func GuardErr[R any](be *Backend, body func() (R, error)) R {
	loc := callerLocation(1)
	return Guard(be, func() R {
		v, err := body()
		if err != nil {
			raiseErr(err, loc)
		}
		return v
	})
}

// fail leaves the boundary for a recovered payload. Never returns.
func (b *Backend) fail(payload any) {
	if _, ok := payload.(HostOriginated); ok {
		b.metrics.outcome(OutcomeRethrow)
		b.log.Logf("[DEBUG] re-throwing host error")
		b.rethrowHost()
	}

	f := Classify(payload)
	rep, _ := ReportOf(f)
	b.metrics.outcome(kind(f))
	if _, ok := f.(GenericFailure); ok {
		b.log.Logf("[WARN] go panic at %s: %s", rep.Err.loc, rep.Err.msg)
	}
	b.emit(rep)
	panic(newDefect("%s diagnostic reached the boundary below ERROR: %s", rep.Level, rep.Err.msg))
}

// rethrowHost makes the error arena active and re-drives the pending host
// error. Never returns.
func (b *Backend) rethrowHost() {
	b.checkThread()
	b.host.SwitchArena(b.host.ErrorArena())
	b.host.ReThrow()
	panic(newDefect("host returned from re-throw"))
}

// CallHost calls fn, which calls into the host. If the host raised an error
// the call unwinds with HostOriginated; the error stays pending in the host.
func CallHost[R any](be *Backend, fn func() R) R {
	be.checkThread()
	var r R
	if be.host.Protect(func() { r = fn() }) {
		be.metrics.hostError()
		be.log.Logf("[DEBUG] host error intercepted, unwinding")
		panic(HostOriginated{})
	}
	return r
}

// CallHostVoid is CallHost for calls without a result.
func CallHostVoid(be *Backend, fn func()) {
	CallHost(be, func() struct{} {
		fn()
		return struct{}{}
	})
}
