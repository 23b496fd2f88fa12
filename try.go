// try.go — catching failures inside Go code without leaving the boundary.
//
// TryRun runs a body and keeps a failure as a value. The caller then
// decides: take the value, rethrow, catch a specific code, or swallow.
// Rethrowing panics with the classified failure; the outermost Guard
// re-drives or emits it.
//
// Swallowing a host-originated failure flushes the host's error state. The
// host's transaction may still be unusable afterwards; only swallow errors
// you know the host can continue from.
package pgguard

import (
	"fmt"
	"runtime"
)

// TryResult is the outcome of TryRun.
type TryResult[R any] struct {
	be       *Backend
	value    R
	payload  any
	panicked bool
	failure  CaughtFailure
}

// TryRun runs body and captures its value or its failure.
func TryRun[R any](be *Backend, body func() R) *TryResult[R] {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	r, payload, panicked := catchUnwind(body)
	t := &TryResult[R]{be: be, value: r, payload: payload, panicked: panicked}
	if panicked {
		// classify while still on the thread whose cell the hook wrote
		t.failure = Classify(payload)
	}
	return t
}

// Ok reports whether the body returned normally.
func (t *TryResult[R]) Ok() bool { return !t.panicked }

// Payload returns the raw recovered panic value, nil when Ok.
func (t *TryResult[R]) Payload() any { return t.payload }

// Failure returns the classified failure, nil when Ok.
func (t *TryResult[R]) Failure() CaughtFailure {
	if !t.panicked {
		return nil
	}
	if t.failure == nil {
		t.failure = Classify(t.payload)
	}
	return t.failure
}

// ErrorCode returns the code of the failure. A host-originated failure is
// read from a copy of the host's pending error; other failures do not touch
// the host.
func (t *TryResult[R]) ErrorCode() (Code, bool) {
	f := t.Failure()
	if f == nil {
		return "", false
	}
	if _, ok := f.(HostOriginated); ok {
		return t.be.pendingCode(), true
	}
	rep, _ := ReportOf(f)
	return rep.CodeVal(), true
}

// ErrorData returns a snapshot of the failure in the host's descriptor
// shape, so a caught error's message, detail and hint can be inspected. A
// host-originated failure is copied from the host's pending error; other
// failures are described from their report without touching the host.
func (t *TryResult[R]) ErrorData() (ErrorData, bool) {
	f := t.Failure()
	if f == nil {
		return ErrorData{}, false
	}
	if _, ok := f.(HostOriginated); ok {
		return t.be.pendingData(), true
	}
	rep, _ := ReportOf(f)
	return rep.errorData(t.be.version), true
}

// pendingData copies the host's pending error into the top transaction
// arena, which survives a later flush, and returns a Go-owned copy.
func (b *Backend) pendingData() ErrorData {
	b.checkThread()
	var snap ErrorData
	b.withArena(b.host.TopTransactionArena(), func() {
		d := b.host.CopyErrorData()
		defer b.host.FreeErrorData(d)
		snap = *d
		snap.arena = 0
	})
	return snap
}

func (b *Backend) pendingCode() Code { return CodeFromRaw(b.pendingData().Code) }

// errorData describes r the way the host would after emitting it.
func (r Report) errorData(v HostVersion) ErrorData {
	e := r.Err
	return ErrorData{
		Level:    r.Level.Raw(v),
		Code:     e.code.Raw(),
		Message:  e.msg,
		Detail:   e.DetailWithBacktrace(),
		Hint:     e.hint,
		Context:  e.ContextMessage(),
		File:     e.loc.File,
		Line:     int32(e.loc.Line), //nolint:gosec // source line numbers fit
		Function: e.loc.Function,
	}
}

// Unwrap returns the value or rethrows the failure.
func (t *TryResult[R]) Unwrap() R { return t.UnwrapOrRethrow(nil) }

// UnwrapOrRethrow returns the value, or runs cleanup and rethrows.
func (t *TryResult[R]) UnwrapOrRethrow(cleanup func()) R {
	if t.Ok() {
		return t.value
	}
	if cleanup != nil {
		cleanup()
	}
	Rethrow(t.Failure())
	panic("unreachable")
}

// FinallyOrRethrow runs finally in both cases, then returns the value or
// rethrows.
func (t *TryResult[R]) FinallyOrRethrow(finally func()) R {
	if finally != nil {
		finally()
	}
	return t.Unwrap()
}

// CaughtError is returned by UnwrapOrCatch for a caught failure.
type CaughtError struct {
	Code    Code
	Failure CaughtFailure
}

func (e *CaughtError) Error() string {
	return fmt.Sprintf("caught %s: %v", e.Code, e.Failure)
}

func (e *CaughtError) CodeVal() Code { return e.Code }
func (e *CaughtError) Unwrap() error { return e.Failure }

// UnwrapOrCatch returns the value, or a *CaughtError when the failure has
// the expected code. Any other failure is rethrown.
func (t *TryResult[R]) UnwrapOrCatch(expected Code) (R, error) {
	if t.Ok() {
		return t.value, nil
	}
	code, _ := t.ErrorCode()
	if code != expected {
		Rethrow(t.Failure())
	}
	t.flush()
	var zero R
	return zero, &CaughtError{Code: code, Failure: t.Failure()}
}

// UnwrapOr returns the value, or v when the body failed. Swallows any failure.
func (t *TryResult[R]) UnwrapOr(v R) R {
	if t.Ok() {
		return t.value
	}
	t.flush()
	return v
}

// UnwrapOrElse returns the value, or the result of f when the body failed.
// Swallows any failure.
func (t *TryResult[R]) UnwrapOrElse(f func() R) R {
	if t.Ok() {
		return t.value
	}
	t.flush()
	return f()
}

// flush discards a pending host error. Other failures have nothing pending;
// classifying them still consumes the thread's panic-location cell.
func (t *TryResult[R]) flush() {
	if _, ok := t.Failure().(HostOriginated); !ok {
		return
	}
	t.be.checkThread()
	t.be.log.Logf("[DEBUG] flushing caught host error")
	t.be.host.FlushErrorState()
}
