// format.go — fmt.Formatter implementations for pgguard values.
//
// Behavior:
//
//   %s, %v   → concise string (Error()).
//   %+v      → verbose, multi-line, in the layout the host uses for
//              verbose error output:
//                ERROR:  XX000: message
//                DETAIL:  ...
//                HINT:  ...
//                CONTEXT:  k=v ...
//                LOCATION:  func, file:line:col
//                  <backtrace frames>
//   %q       → quoted Error().
package pgguard

import (
	"fmt"
	"io"
)

// formatConcise writes the one-line message (delegates to Error()).
func formatConcise(w io.Writer, e error) {
	_, _ = io.WriteString(w, e.Error())
}

// formatVerbose writes the generic multi-line representation used by values
// that are not reports (defects).
func formatVerbose(w io.Writer, code Code, msg string, ctx fields, cause error, stk Stack) {
	if code != "" {
		_, _ = fmt.Fprintf(w, "code=%s ", code)
	}
	_, _ = fmt.Fprintf(w, "msg=%q", msg)

	if line := ctx.render(); line != "" {
		_, _ = io.WriteString(w, "\nctx: "+line)
	}
	if cause != nil {
		_, _ = io.WriteString(w, "\ncause: ")
		_, _ = fmt.Fprintf(w, "%+v", cause)
	}
	if len(stk) > 0 {
		_, _ = io.WriteString(w, "\nstack:\n")
		_, _ = io.WriteString(w, stk.String())
	}
}

// writeReport writes the host-style verbose rendering of a report. A zero
// level omits the severity prefix.
func writeReport(w io.Writer, level Level, e *ErrorReport) {
	if level.Valid() {
		_, _ = fmt.Fprintf(w, "%s:  ", level)
	}
	_, _ = fmt.Fprintf(w, "%s: %s", e.code, e.msg)
	if e.detail != "" {
		_, _ = fmt.Fprintf(w, "\nDETAIL:  %s", e.detail)
	}
	if e.hint != "" {
		_, _ = fmt.Fprintf(w, "\nHINT:  %s", e.hint)
	}
	if line := e.ContextMessage(); line != "" {
		_, _ = fmt.Fprintf(w, "\nCONTEXT:  %s", line)
	}
	_, _ = fmt.Fprintf(w, "\nLOCATION:  %s", e.loc)
}

func formatWith(s fmt.State, verb rune, e error, verbose func(io.Writer)) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			verbose(s)
			return
		}
		formatConcise(s, e)
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	default:
		formatConcise(s, e)
	}
}

func (e *ErrorReport) Format(s fmt.State, verb rune) {
	formatWith(s, verb, e, func(w io.Writer) { writeReport(w, 0, e) })
}

func (r Report) Format(s fmt.State, verb rune) {
	formatWith(s, verb, r, func(w io.Writer) { writeReport(w, r.Level, r.Err) })
}
