// doc.go — package documentation for pgguard
//
// Package pgguard bridges Go's panic/recover failure model and the
// longjmp-based error model of a database host that loads Go code as an
// extension. Every failure crosses the boundary exactly once, in the form the
// receiving side understands.
//
// # Two Boundaries
//
//	+---------------------+------------------------------+-------------------------------+
//	| Boundary            | Direction                    | Failure leaves as             |
//	+---------------------+------------------------------+-------------------------------+
//	| Guard / GuardErr    | host calls Go                | host diagnostic or re-throw   |
//	| CallHost            | Go calls host                | panic(HostOriginated{})       |
//	+---------------------+------------------------------+-------------------------------+
//
// Guard must be the outermost Go frame of a call from the host. Only Guard
// classifies and emits; nested code unwinds with plain panics.
//
// # Raising Diagnostics
//
//	rep := pgguard.Errorf(pgguard.CodeDivisionByZero, "division by zero").
//		WithHint("check the divisor").
//		Ctx("relation", "orders")
//	panic(rep.At(pgguard.Error))        // or be.Ereport(pgguard.Error, rep)
//	be.Warning("%d rows skipped", n)    // returns: below ERROR
//	pgguard.Raise(pgguard.CodeRaiseException, "bad input %q", s)
//
// Any other panic (a string, an error, a runtime fault) is reported as
// CodeInternalError at ERROR with the panic site as location, provided
// InstallPanicHook was called at load time.
//
// # Catching
//
//	res := pgguard.TryRun(be, body)
//	v, err := res.UnwrapOrCatch(pgguard.CodeDivisionByZero)
//
// A caught host error is flushed from the host's error state. Failures with
// other codes are rethrown to the enclosing Guard.
//
// # Severity Encoding
//
// Level is version independent. Level.Raw encodes it for a host major
// version; WARNING_CLIENT_ONLY exists from version 14 on and shifts ERROR,
// FATAL and PANIC up by one. Versions 11 and 12 use the legacy diagnostic
// convention that passes the location to errstart instead of errfinish.
//
// # Formatting
//
//   - %v, %s  → "LEVEL: CODE: message" for Report, "CODE: message" for *ErrorReport
//   - %+v     → verbose, multi-line (detail, hint, context, location, backtrace)
//   - %q      → quoted Error()
//
// # Threads
//
// The host is single threaded. The first OS thread that uses a Backend owns
// it; a call from any other thread panics with a *Defect wrapping
// ErrWrongThread.
package pgguard
