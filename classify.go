// classify.go — turning a recovered panic payload into a CaughtFailure.
//
// Rules, in priority order:
//  1. an already-classified CaughtFailure is returned unchanged;
//  2. a Report (or *Report) becomes Reported;
//  3. a bare *ErrorReport becomes Reported at ERROR;
//  4. text (string, error, fmt.Stringer) becomes a GenericFailure with
//     CodeInternalError, the text as message and the panic site as location;
//  5. anything else becomes a GenericFailure with a fixed message.
//
// HostOriginated is not detected here from payload inspection: it is the
// marker CallHost panics with, and Guard checks for it before classifying.
package pgguard

import (
	"fmt"
)

// OpaquePayloadMessage is the message of a GenericFailure whose payload
// carried no text.
const OpaquePayloadMessage = "opaque panic payload"

// Classify normalises a recovered panic payload.
func Classify(payload any) CaughtFailure {
	switch v := payload.(type) {
	case CaughtFailure:
		return v
	case Report:
		return Reported{Report: normalizeReport(v)}
	case *Report:
		if v != nil {
			return Reported{Report: normalizeReport(*v)}
		}
	case *ErrorReport:
		if v != nil {
			return Reported{Report: v.At(Error)}
		}
	case string:
		return generic(v, payload)
	case error:
		return generic(v.Error(), payload)
	case fmt.Stringer:
		return generic(v.String(), payload)
	}

	rep := newReportAt(CodeInternalError, OpaquePayloadMessage, takePanicLocation()).
		WithDetail(fmt.Sprintf("panic payload of type %T", payload))
	return GenericFailure{Report: rep.At(Error), Payload: payload}
}

func generic(msg string, payload any) GenericFailure {
	rep := newReportAt(CodeInternalError, msg, takePanicLocation())
	return GenericFailure{Report: rep.At(Error), Payload: payload}
}

// normalizeReport fills in what a hand-built Report may lack: a nil report
// becomes an internal error, an invalid level becomes ERROR.
func normalizeReport(r Report) Report {
	if r.Err == nil {
		r.Err = newReportAt(CodeInternalError, "report without a diagnostic", takePanicLocation())
	}
	if !r.Level.Valid() {
		r.Level = Error
	}
	return r
}
