// predicates.go — questions asked of errors and panic payloads.
//
// All error predicates traverse with errors.As, so single and multi
// (errors.Join, multierror) unwrap chains are both searched.
package pgguard

import (
	"errors"
)

// CodeOf returns the first Code found along err's chain, or "" if none.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var cv coder
	if errors.As(err, &cv) {
		return cv.CodeVal()
	}
	return ""
}

// HasCode reports whether the first code along err's chain is code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsDefect reports whether err is, or wraps, a boundary contract violation.
func IsDefect(err error) bool {
	var d *Defect
	return errors.As(err, &d)
}

// IsHostOriginated reports whether v, a recovered panic payload or an
// error, stands for an error raised by the host.
func IsHostOriginated(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case HostOriginated, *HostOriginated:
		return true
	case error:
		var h HostOriginated
		return errors.As(x, &h)
	default:
		return false
	}
}

// IsWrongThread reports whether err is a thread-affinity violation.
func IsWrongThread(err error) bool {
	return errors.Is(err, ErrWrongThread)
}
