// codes.go — SQLSTATE codes carried by pgguard diagnostics.
//
// Intent:
//   - Keep the canonical five-character SQLSTATE as the textual form of a code.
//   - Pack/unpack the host's integer encoding (MAKE_SQLSTATE) bit-exactly.
//   - Resolve condition names through lib/pq instead of a private table.
//
// Conventions (documented, not enforced here):
//   - Codes are five characters from [0-9A-Z]; the first two name the class.
//   - Extensions may use any valid code; the built-ins are only the ones the
//     bridge itself raises or that tests and examples rely on.
package pgguard

import (
	"github.com/lib/pq"
)

// NOTE: Code type is declared in error.go. Invariants are documented there.

// Success / warnings
const (
	CodeSuccessfulCompletion Code = "00000"
	CodeWarning              Code = "01000"
	CodeDeprecatedFeature    Code = "01P01"
	CodeNoData               Code = "02000"
)

// Feature / data
const (
	CodeFeatureNotSupported          Code = "0A000"
	CodeDataException                Code = "22000"
	CodeDivisionByZero               Code = "22012"
	CodeNumericValueOutOfRange       Code = "22003"
	CodeInvalidParameterValue        Code = "22023"
	CodeInvalidTextRepresentation    Code = "22P02"
	CodeNullValueNotAllowed          Code = "22004"
	CodeStringDataRightTruncation    Code = "22001"
	CodeIntegrityConstraintViolation Code = "23000"
	CodeUniqueViolation              Code = "23505"
	CodeInvalidTransactionState      Code = "25000"
)

// Access / syntax
const (
	CodeInsufficientPrivilege Code = "42501"
	CodeSyntaxError           Code = "42601"
	CodeUndefinedFunction     Code = "42883"
	CodeUndefinedObject       Code = "42704"
)

// Resources / operator intervention
const (
	CodeOutOfMemory    Code = "53200"
	CodeQueryCanceled  Code = "57014"
	CodeAdminShutdown  Code = "57P01"
	CodeRaiseException Code = "P0001"
	CodeAssertFailure  Code = "P0004"
	CodeInternalError  Code = "XX000"
	CodeDataCorrupted  Code = "XX001"
	CodeIndexCorrupted Code = "XX002"
)

// allBuiltinCodes is the ordered set of codes the core ships with.
// Order follows SQLSTATE class order.
var allBuiltinCodes = []Code{
	CodeSuccessfulCompletion,
	CodeWarning,
	CodeDeprecatedFeature,
	CodeNoData,

	CodeFeatureNotSupported,
	CodeDataException,
	CodeDivisionByZero,
	CodeNumericValueOutOfRange,
	CodeInvalidParameterValue,
	CodeInvalidTextRepresentation,
	CodeNullValueNotAllowed,
	CodeStringDataRightTruncation,
	CodeIntegrityConstraintViolation,
	CodeUniqueViolation,
	CodeInvalidTransactionState,

	CodeInsufficientPrivilege,
	CodeSyntaxError,
	CodeUndefinedFunction,
	CodeUndefinedObject,

	CodeOutOfMemory,
	CodeQueryCanceled,
	CodeAdminShutdown,
	CodeRaiseException,
	CodeAssertFailure,
	CodeInternalError,
	CodeDataCorrupted,
	CodeIndexCorrupted,
}

// builtinCodeSet provides O(1) membership checks for built-ins.
var builtinCodeSet = func() map[Code]struct{} {
	m := make(map[Code]struct{}, len(allBuiltinCodes))
	for _, c := range allBuiltinCodes {
		m[c] = struct{}{}
	}
	return m
}()

// BuiltinCodes returns a defensive copy of the built-in codes in a stable order.
func BuiltinCodes() []Code {
	out := make([]Code, len(allBuiltinCodes))
	copy(out, allBuiltinCodes)
	return out
}

// IsBuiltin reports whether c is one of the built-in core codes.
func (c Code) IsBuiltin() bool {
	_, ok := builtinCodeSet[c]
	return ok
}

// Valid reports whether c is a well-formed SQLSTATE.
func (c Code) Valid() bool {
	if len(c) != 5 {
		return false
	}
	for i := 0; i < len(c); i++ {
		ch := c[i]
		if (ch < '0' || ch > '9') && (ch < 'A' || ch > 'Z') {
			return false
		}
	}
	return true
}

// sixbit mirrors the host's PGSIXBIT macro.
func sixbit(ch byte) int32 {
	return (int32(ch) - '0') & 0x3F
}

// Raw packs the code into the host's integer representation
// (MAKE_SQLSTATE). Invalid codes pack as CodeInternalError.
func (c Code) Raw() int32 {
	if !c.Valid() {
		c = CodeInternalError
	}
	return sixbit(c[0]) +
		sixbit(c[1])<<6 +
		sixbit(c[2])<<12 +
		sixbit(c[3])<<18 +
		sixbit(c[4])<<24
}

// CodeFromRaw unpacks the host's integer representation into a Code.
func CodeFromRaw(raw int32) Code {
	var b [5]byte
	for i := range b {
		b[i] = byte((raw>>(6*i))&0x3F) + '0'
	}
	return Code(b[:])
}

// Name returns the condition name ("division_by_zero"), or "" when the code
// is unknown to lib/pq.
func (c Code) Name() string {
	return pq.ErrorCode(c).Name()
}

// Class returns the two-character class prefix ("22").
func (c Code) Class() string {
	if len(c) < 2 {
		return ""
	}
	return string(pq.ErrorCode(c).Class())
}

// ClassName returns the condition name of the code's class ("data_exception").
func (c Code) ClassName() string {
	if len(c) < 2 {
		return ""
	}
	return pq.ErrorCode(c).Class().Name()
}
