// error.go — codes and contract-violation defects.
package pgguard

import (
	"fmt"
)

// Code is a five-character SQLSTATE, the canonical textual form of the
// host's diagnostic code. The host's integer encoding is derived on demand
// (see Code.Raw).
type Code string

// String returns the SQLSTATE text.
func (c Code) String() string { return string(c) }

// coder is implemented by every value that carries a Code. Predicates use it
// so foreign wrappers that expose CodeVal() are recognised too.
type coder interface {
	CodeVal() Code
}

// Defect marks a broken contract at the boundary: a host call that was
// documented to never return did return, a sub-ERROR failure reached Guard,
// or the host was called from the wrong thread. Defects are raised with
// panic and are never converted into host diagnostics by the code that
// detects them.
type Defect struct {
	msg   string
	cause error
	stk   Stack
}

func newDefect(format string, args ...any) *Defect {
	return &Defect{msg: fmt.Sprintf(format, args...), stk: captureStackDefault(1)}
}

func wrapDefect(cause error, format string, args ...any) *Defect {
	return &Defect{msg: fmt.Sprintf(format, args...), cause: cause, stk: captureStackDefault(1)}
}

func (d *Defect) Error() string {
	if d.cause != nil {
		return "pgguard defect: " + d.msg + ": " + d.cause.Error()
	}
	return "pgguard defect: " + d.msg
}

func (d *Defect) Unwrap() error { return d.cause }

// CodeVal reports CodeInternalError; a defect that reaches an outer boundary
// is emitted as an internal error.
func (d *Defect) CodeVal() Code { return CodeInternalError }

// Stack returns the frames captured where the defect was detected.
func (d *Defect) Stack() Stack { return d.stk }

func (d *Defect) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		formatVerbose(s, CodeInternalError, d.msg, nil, d.cause, d.stk)
		return
	}
	formatConcise(s, d)
}

var _ coder = (*Defect)(nil)
