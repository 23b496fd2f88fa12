// caught.go — the classified form of a recovered panic.
//
// CaughtFailure is a closed union; the unexported method keeps other
// packages from adding variants. A CaughtFailure is itself a valid panic
// payload: re-panicking with it (Rethrow) carries an already-classified
// failure further up, and the classifier returns it unchanged.
package pgguard

import (
	"fmt"
)

// CaughtFailure is one of HostOriginated, Reported or GenericFailure.
type CaughtFailure interface {
	error
	caughtFailure()
}

// HostOriginated marks a failure that the host already raised at ERROR or
// above. Its diagnostic is pending inside the host; it must be re-driven
// through the host's own recovery point and never re-emitted.
type HostOriginated struct{}

// Reported is an explicit diagnostic raised from Go code.
type Reported struct {
	Report Report
}

// GenericFailure is a panic that was not raised as a diagnostic: a string,
// an error, or any other value. It is normalised to an internal error at
// ERROR; the original payload is kept for re-panicking.
type GenericFailure struct {
	Report  Report
	Payload any
}

func (HostOriginated) caughtFailure() {}
func (Reported) caughtFailure()       {}
func (GenericFailure) caughtFailure() {}

func (HostOriginated) Error() string   { return "error raised by the host" }
func (f Reported) Error() string       { return f.Report.Error() }
func (f GenericFailure) Error() string { return f.Report.Error() }

func (f Reported) Unwrap() error { return f.Report }

// Unwrap exposes the original payload when it was an error.
func (f GenericFailure) Unwrap() error {
	if err, ok := f.Payload.(error); ok {
		return err
	}
	return nil
}

func (f Reported) CodeVal() Code       { return f.Report.CodeVal() }
func (f GenericFailure) CodeVal() Code { return f.Report.CodeVal() }

// Rethrow resumes unwinding with the classified failure. Never returns.
func Rethrow(f CaughtFailure) {
	panic(f)
}

// ReportOf returns the report carried by f; false for HostOriginated.
func ReportOf(f CaughtFailure) (Report, bool) {
	switch v := f.(type) {
	case Reported:
		return v.Report, true
	case GenericFailure:
		return v.Report, true
	default:
		return Report{}, false
	}
}

// kind names the variant for logs and metrics.
func kind(f CaughtFailure) string {
	switch f.(type) {
	case HostOriginated:
		return "host"
	case Reported:
		return "reported"
	case GenericFailure:
		return "generic"
	default:
		return fmt.Sprintf("%T", f)
	}
}

var (
	_ CaughtFailure = HostOriginated{}
	_ CaughtFailure = Reported{}
	_ CaughtFailure = GenericFailure{}
)
