// elog.go — raising and logging diagnostics from Go code.
//
// Below ERROR a diagnostic is handed to the host right away and control
// returns. ERROR unwinds the Go frames with a panic and is emitted by the
// outermost Guard. FATAL and PANIC end the host process, so they are
// emitted at once and never return.
package pgguard

import (
	"fmt"
)

// Ereport raises rep at level.
func (b *Backend) Ereport(level Level, rep *ErrorReport) {
	if rep == nil {
		rep = newReportAt(CodeInternalError, "nil report", callerLocation(1))
	}
	switch {
	case level == Error:
		panic(rep.At(Error))
	case level.Aborts():
		b.emit(rep.At(level))
		panic(newDefect("host returned from a %s report", level))
	default:
		b.emit(rep.At(level))
	}
}

// Elog reports a formatted message at level, located at the caller. The
// code follows the host's defaults: CodeInternalError at ERROR and above,
// CodeWarning at the warning levels, CodeSuccessfulCompletion otherwise.
func (b *Backend) Elog(level Level, format string, args ...any) {
	b.Ereport(level, newReportAt(defaultCode(level), fmt.Sprintf(format, args...), callerLocation(1)))
}

func defaultCode(level Level) Code {
	switch {
	case level.Aborts():
		return CodeInternalError
	case level == Warning || level == WarningClientOnly:
		return CodeWarning
	default:
		return CodeSuccessfulCompletion
	}
}

// Log reports a formatted message at LOG, located at the caller.
func (b *Backend) Log(format string, args ...any) {
	b.Ereport(Log, newReportAt(defaultCode(Log), fmt.Sprintf(format, args...), callerLocation(1)))
}

// Info reports a formatted message at INFO, located at the caller.
func (b *Backend) Info(format string, args ...any) {
	b.Ereport(Info, newReportAt(defaultCode(Info), fmt.Sprintf(format, args...), callerLocation(1)))
}

// Notice reports a formatted message at NOTICE, located at the caller.
func (b *Backend) Notice(format string, args ...any) {
	b.Ereport(Notice, newReportAt(defaultCode(Notice), fmt.Sprintf(format, args...), callerLocation(1)))
}

// Warning reports a formatted message at WARNING, located at the caller.
func (b *Backend) Warning(format string, args ...any) {
	b.Ereport(Warning, newReportAt(defaultCode(Warning), fmt.Sprintf(format, args...), callerLocation(1)))
}

// Debug1 reports a formatted message at DEBUG1, located at the caller.
func (b *Backend) Debug1(format string, args ...any) {
	b.Ereport(Debug1, newReportAt(defaultCode(Debug1), fmt.Sprintf(format, args...), callerLocation(1)))
}

// Raise panics with a report at ERROR, located at the caller.
func Raise(code Code, format string, args ...any) {
	panic(newReportAt(code, fmt.Sprintf(format, args...), callerLocation(1)).At(Error))
}

// Must returns v when err is nil and raises err at ERROR otherwise.
// Errors that are not reports keep their code if they expose one and get
// CodeDataException if not; they are located at the caller of Must.
func Must[T any](v T, err error) T {
	if err != nil {
		raiseErr(err, callerLocation(1))
	}
	return v
}

// raiseErr panics with err at ERROR. loc is used only for errors that do
// not carry a report of their own.
func raiseErr(err error, loc Location) {
	if r, ok := err.(Report); ok && r.Err != nil {
		panic(r)
	}
	if rep, ok := asReport(err); ok {
		panic(rep.At(Error))
	}
	panic(fromForeign(err, err.Error(), loc).At(Error))
}
