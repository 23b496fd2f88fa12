// typed_field.go — type-safe access to report context fields.
//
// TypedField complements Ctx/With: both write the same ordered fields, and
// a typed read only succeeds when the stored dynamic type is exactly T.
//
//	var FRelation = pgguard.TypedKey[string]("relation")
//
//	rep := FRelation.Set(pgguard.NewReport(pgguard.CodeUniqueViolation, "duplicate key"), "users")
//	rel, ok := FRelation.Get(rep) // "users", true
package pgguard

import (
	"fmt"
)

// TypedField is a context key bound to a value type.
type TypedField[T any] struct {
	key string
}

// TypedKey constructs a TypedField[T] for key. Keys should be snake_case,
// they end up in the host's context line.
func TypedKey[T any](key string) TypedField[T] {
	return TypedField[T]{key: key}
}

// Key returns the underlying string key.
func (f TypedField[T]) Key() string { return f.key }

// Set attaches key=val and returns a NEW report. A nil report is returned
// as nil.
func (f TypedField[T]) Set(e *ErrorReport, val T) *ErrorReport {
	if e == nil {
		return nil
	}
	return e.With(f.key, val)
}

// Get returns the last value stored under the key. It scans the fields
// directly, without building the Context map.
func (f TypedField[T]) Get(e *ErrorReport) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	for i := len(e.ctx) - 1; i >= 0; i-- {
		if e.ctx[i].Key != f.key {
			continue
		}
		tv, ok := e.ctx[i].Val.(T)
		return tv, ok
	}
	return zero, false
}

// MustGet is Get that panics when the field is missing or has another type.
// Meant for tests and for fields whose absence is a programming error.
func (f TypedField[T]) MustGet(e *ErrorReport) T {
	v, ok := f.Get(e)
	if !ok {
		var zero T
		panic(fmt.Errorf("pgguard.TypedField[%T](%q): field missing or of another type", zero, f.key))
	}
	return v
}
