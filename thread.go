// thread.go — thread affinity of host calls.
//
// The host is single-threaded: one backend process, one OS thread talking
// to it. The first thread that emits through a Backend owns it; any other
// thread is a fatal contract violation rather than a recoverable error.
package pgguard

import (
	"errors"
	"sync/atomic"
)

// ErrWrongThread is the cause of the Defect raised when a Backend is used
// from a thread other than the one that first used it.
var ErrWrongThread = errors.New("host FFI may not be called from multiple threads")

type threadOwner struct {
	tid atomic.Int64
}

// check binds the owner on first use and panics with a Defect afterwards if
// the calling thread differs. Platforms without thread ids skip the check.
func (o *threadOwner) check() {
	cur := threadID()
	if cur == 0 {
		return
	}
	if o.tid.CompareAndSwap(0, cur) {
		return
	}
	if owner := o.tid.Load(); owner != cur {
		panic(wrapDefect(ErrWrongThread, "thread %d used a backend owned by thread %d", cur, owner))
	}
}

// reset forgets the owner (forked child processes start unbound).
func (o *threadOwner) reset() { o.tid.Store(0) }
