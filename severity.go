// severity.go — ordered diagnostic levels and their host integer encoding.
//
// The host passes severities as raw integers, and the numbering moved in
// host major version 14 when WARNING_CLIENT_ONLY was inserted below ERROR.
// Level is version-independent and ordered; Raw/LevelFromRaw translate at the
// boundary for a given HostVersion.
package pgguard

import (
	"fmt"
	"strings"
)

// Level is a diagnostic severity. The zero value is not a valid level.
type Level uint8

const (
	Debug5 Level = iota + 1
	Debug4
	Debug3
	Debug2
	Debug1
	Log
	LogServerOnly
	Info
	Notice
	Warning
	WarningClientOnly
	Error
	Fatal
	Panic
)

var levelNames = [...]string{
	Debug5:            "DEBUG5",
	Debug4:            "DEBUG4",
	Debug3:            "DEBUG3",
	Debug2:            "DEBUG2",
	Debug1:            "DEBUG1",
	Log:               "LOG",
	LogServerOnly:     "LOG_SERVER_ONLY",
	Info:              "INFO",
	Notice:            "NOTICE",
	Warning:           "WARNING",
	WarningClientOnly: "WARNING_CLIENT_ONLY",
	Error:             "ERROR",
	Fatal:             "FATAL",
	Panic:             "PANIC",
}

// String returns the host's spelling of the level.
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool { return l >= Debug5 && l <= Panic }

// Aborts reports whether the host never returns control after emitting at
// this level.
func (l Level) Aborts() bool { return l >= Error }

// ParseLevel is the inverse of Level.String, case-insensitive. "DEBUG" is
// accepted as DEBUG1 and "WARN" as WARNING.
func ParseLevel(s string) (Level, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	switch up {
	case "DEBUG":
		return Debug1, nil
	case "WARN":
		return Warning, nil
	}
	for l := Debug5; l <= Panic; l++ {
		if levelNames[l] == up {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown severity level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid severity level %d", uint8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Host integer scales. DEBUG5..WARNING are stable across versions.
const (
	rawDebug5        int32 = 10
	rawLog           int32 = 15
	rawLogServerOnly int32 = 16
	rawInfo          int32 = 17
	rawNotice        int32 = 18
	rawWarning       int32 = 19
)

// Raw returns the host's integer for l under host major version v. Before
// version 14 WARNING_CLIENT_ONLY does not exist and is sent as WARNING.
func (l Level) Raw(v HostVersion) int32 {
	modern := v.hasWarningClientOnly()
	switch {
	case l >= Debug5 && l <= Debug1:
		return rawDebug5 + int32(l-Debug5)
	case l == Log:
		return rawLog
	case l == LogServerOnly:
		return rawLogServerOnly
	case l == Info:
		return rawInfo
	case l == Notice:
		return rawNotice
	case l == Warning:
		return rawWarning
	case l == WarningClientOnly:
		if modern {
			return 20
		}
		return rawWarning
	}

	base := int32(20) // ERROR before version 14
	if modern {
		base = 21
	}
	switch l {
	case Fatal:
		return base + 1
	case Panic:
		return base + 2
	default:
		return base
	}
}

// LevelFromRaw maps a host integer back to a Level. Unknown values map to
// Error, matching how the host treats an unrecognised elevel.
func LevelFromRaw(raw int32, v HostVersion) Level {
	for l := Debug5; l <= Panic; l++ {
		if l == WarningClientOnly && !v.hasWarningClientOnly() {
			continue
		}
		if l.Raw(v) == raw {
			return l
		}
	}
	return Error
}
