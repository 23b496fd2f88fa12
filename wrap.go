// wrap.go — turning arbitrary Go errors into host diagnostics.
//
// A Go error raised at the boundary needs a code and a message. These
// helpers keep what the error already carries:
//   - *ErrorReport and Report are used as they are;
//   - an error exposing CodeVal() keeps its code;
//   - anything else becomes CodeDataException.
//
// The original error stays reachable through the report's cause for
// errors.Is/As on the Go side; the host only ever sees code and text.
package pgguard

import (
	"errors"
)

// From converts err into a report located at the caller. nil stays nil.
func From(err error) *ErrorReport {
	if err == nil {
		return nil
	}
	if rep, ok := asReport(err); ok {
		return rep
	}
	return fromForeign(err, err.Error(), callerLocation(1))
}

// Wrap converts err into a report with msg as message and err's text as
// detail. Context pairs are attached as with Ctx. A nil err yields a report
// with CodeInternalError.
func Wrap(err error, msg string, kv ...any) *ErrorReport {
	loc := callerLocation(1)
	if err == nil {
		return newReportAt(CodeInternalError, msg, loc).Ctx(kv...)
	}
	return fromForeign(err, msg, loc).WithDetail(err.Error()).Ctx(kv...)
}

// Recode returns err as a report carrying code c.
func Recode(err error, c Code) *ErrorReport {
	if err == nil {
		return nil
	}
	if rep, ok := asReport(err); ok {
		return rep.WithCode(c)
	}
	return fromForeign(err, err.Error(), callerLocation(1)).WithCode(c)
}

func asReport(err error) (*ErrorReport, bool) {
	var rep *ErrorReport
	if errors.As(err, &rep) && rep != nil {
		return rep, true
	}
	return nil, false
}

func fromForeign(err error, msg string, loc Location) *ErrorReport {
	code := CodeDataException
	if c := CodeOf(err); c.Valid() {
		code = c
	}
	rep := newReportAt(code, msg, loc)
	rep.cause = err
	return rep
}
