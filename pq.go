// pq.go — conversion between reports and lib/pq's wire error.
//
// A *pq.Error is what a client sees of a host diagnostic. Converting both
// ways lets Go code that talks to the host over the wire re-raise a server
// error with its code intact, and lets tests compare a report with what a
// client would receive.
package pgguard

import (
	"strconv"

	"github.com/lib/pq"
)

// ToPQ renders r as a client-side *pq.Error.
func (r Report) ToPQ() *pq.Error {
	r = normalizeReport(r)
	e := r.Err
	out := &pq.Error{
		Severity: r.Level.String(),
		Code:     pq.ErrorCode(e.code),
		Message:  e.msg,
		Detail:   e.detail,
		Hint:     e.hint,
		Where:    e.ContextMessage(),
		File:     e.loc.File,
		Routine:  e.loc.Function,
	}
	if e.loc.Line > 0 {
		out.Line = strconv.FormatUint(uint64(e.loc.Line), 10)
	}
	return out
}

// FromPQ turns a server error received by lib/pq into a Report at the
// severity the server sent; unknown severities map to ERROR.
func FromPQ(e *pq.Error) Report {
	if e == nil {
		return Report{}
	}
	level, err := ParseLevel(e.Severity)
	if err != nil {
		level = Error
	}
	loc := Location{File: e.File, Function: e.Routine}
	if loc.File == "" {
		loc.File = unknownFile
	}
	if n, err := strconv.ParseUint(e.Line, 10, 32); err == nil {
		loc.Line = uint32(n)
	}
	rep := newReportAt(Code(e.Code), e.Message, loc).
		WithDetail(e.Detail).
		WithHint(e.Hint)
	if e.Where != "" {
		rep = rep.With("where", e.Where)
	}
	rep.cause = e
	return rep.At(level)
}
