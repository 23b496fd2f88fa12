// report.go — the structured diagnostic carried across the boundary.
//
// Scope:
//   - ErrorReport: code, message, optional hint/detail, context fields and an
//     always-present Location. Immutable; fluent methods return a new value.
//   - Report: an ErrorReport paired with the severity it is raised at. This
//     is the unit the classifier produces and the emitter consumes.
//
// Message semantics:
//   - Message is required display text and never concatenated by builders.
//   - Hint and Detail are optional; "" means absent.
//   - Context fields are rendered into the host's context line, not into the
//     message.
package pgguard

import (
	"fmt"
	"strings"
)

// ErrorReport is a host-native diagnostic built on the Go side.
type ErrorReport struct {
	code   Code
	msg    string
	hint   string
	detail string
	ctx    fields
	loc    Location
	cause  error // Go-side only, never sent to the host
}

// NewReport creates a report whose location is the caller's file, line and
// function.
func NewReport(code Code, msg string) *ErrorReport {
	return &ErrorReport{code: code, msg: msg, loc: callerLocation(1)}
}

// Errorf is NewReport with a formatted message.
func Errorf(code Code, format string, args ...any) *ErrorReport {
	return &ErrorReport{code: code, msg: fmt.Sprintf(format, args...), loc: callerLocation(1)}
}

// newReportAt creates a report with an explicit location (classifier use).
func newReportAt(code Code, msg string, loc Location) *ErrorReport {
	return &ErrorReport{code: code, msg: msg, loc: loc}
}

func (e *ErrorReport) clone() *ErrorReport {
	n := *e
	if len(e.ctx) > 0 {
		n.ctx = make(fields, len(e.ctx))
		copy(n.ctx, e.ctx)
	}
	// Location is a value; Backtrace is never mutated in place.
	return &n
}

// WithHint sets the hint line. Returns a NEW report.
func (e *ErrorReport) WithHint(hint string) *ErrorReport {
	n := e.clone()
	n.hint = hint
	return n
}

// WithDetail sets the detail line. Returns a NEW report.
func (e *ErrorReport) WithDetail(detail string) *ErrorReport {
	n := e.clone()
	n.detail = detail
	return n
}

// WithFunction overrides the function name of the location. Returns a NEW report.
func (e *ErrorReport) WithFunction(name string) *ErrorReport {
	n := e.clone()
	n.loc.Function = name
	return n
}

// WithLocation replaces the location. Returns a NEW report.
func (e *ErrorReport) WithLocation(loc Location) *ErrorReport {
	n := e.clone()
	n.loc = loc
	return n
}

// WithCode reclassifies the report. Returns a NEW report.
func (e *ErrorReport) WithCode(c Code) *ErrorReport {
	n := e.clone()
	n.code = c
	return n
}

// WithBacktrace captures the caller's stack into the location.
// Returns a NEW report.
func (e *ErrorReport) WithBacktrace() *ErrorReport {
	return e.WithBacktraceSkip(1)
}

// WithBacktraceSkip is like WithBacktrace but skips 'skip' additional frames.
func (e *ErrorReport) WithBacktraceSkip(skip int) *ErrorReport {
	n := e.clone()
	n.loc.Backtrace = captureStackDefault(skip + 1)
	return n
}

// Ctx attaches key-value context fields. Returns a NEW report.
//
// Example:
//
//	rep = rep.Ctx("relation", "users", "attempt", 2)
func (e *ErrorReport) Ctx(kv ...any) *ErrorReport {
	n := e.clone()
	if len(kv) > 0 {
		n.ctx = ctxCloneAppend(n.ctx, ctxFromKV(kv...)...)
	}
	return n
}

// With adds a single context field. Returns a NEW report.
func (e *ErrorReport) With(key string, val any) *ErrorReport {
	n := e.clone()
	n.ctx = ctxCloneAppend(n.ctx, Field{Key: key, Val: val})
	return n
}

func (e *ErrorReport) CodeVal() Code           { return e.code }
func (e *ErrorReport) Message() string         { return e.msg }
func (e *ErrorReport) Hint() string            { return e.hint }
func (e *ErrorReport) Detail() string          { return e.detail }
func (e *ErrorReport) Location() Location      { return e.loc }
func (e *ErrorReport) Context() map[string]any { return ctxToMap(e.ctx) }

// Unwrap returns the Go error the report was converted from, if any.
func (e *ErrorReport) Unwrap() error { return e.cause }

// ContextMessage is the rendered context line, "" when there are no fields.
func (e *ErrorReport) ContextMessage() string { return e.ctx.render() }

// DetailWithBacktrace returns the detail followed by the captured backtrace,
// whichever of the two are present.
func (e *ErrorReport) DetailWithBacktrace() string {
	bt := e.loc.Backtrace
	switch {
	case e.detail != "" && len(bt) > 0:
		return e.detail + "\n" + bt.String()
	case len(bt) > 0:
		return "\n" + bt.String()
	default:
		return e.detail
	}
}

// Error renders "CODE: message".
func (e *ErrorReport) Error() string {
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// At pairs the report with a severity.
func (e *ErrorReport) At(level Level) Report {
	return Report{Level: level, Err: e}
}

// Report is an ErrorReport with the severity it is raised at.
type Report struct {
	Level Level
	Err   *ErrorReport
}

func (r Report) CodeVal() Code { return r.Err.CodeVal() }
func (r Report) Unwrap() error { return r.Err }

// Error renders "LEVEL: CODE: message".
func (r Report) Error() string {
	return r.Level.String() + ": " + r.Err.Error()
}

// String renders the multi-line form the host prints.
func (r Report) String() string {
	var sb strings.Builder
	writeReport(&sb, r.Level, r.Err)
	return sb.String()
}

var (
	_ error = (*ErrorReport)(nil)
	_ error = Report{}
	_ coder = (*ErrorReport)(nil)
	_ coder = Report{}
)
