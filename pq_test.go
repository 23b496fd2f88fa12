package pgguard

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_ToPQ(t *testing.T) {
	t.Parallel()

	rep := NewReport(CodeUniqueViolation, "duplicate key").
		WithLocation(Location{File: "nbtinsert.c", Line: 666, Function: "_bt_check_unique"}).
		WithDetail("Key (id)=(1) already exists.").
		WithHint("pick another id").
		Ctx("relation", "users").
		At(Error)

	e := rep.ToPQ()
	assert.Equal(t, "ERROR", e.Severity)
	assert.Equal(t, pq.ErrorCode("23505"), e.Code)
	assert.Equal(t, "unique_violation", e.Code.Name())
	assert.Equal(t, "duplicate key", e.Message)
	assert.Equal(t, "Key (id)=(1) already exists.", e.Detail)
	assert.Equal(t, "pick another id", e.Hint)
	assert.Equal(t, "relation=users", e.Where)
	assert.Equal(t, "nbtinsert.c", e.File)
	assert.Equal(t, "666", e.Line)
	assert.Equal(t, "_bt_check_unique", e.Routine)
}

func TestFromPQ(t *testing.T) {
	t.Parallel()

	src := &pq.Error{
		Severity: "WARNING",
		Code:     "01P01",
		Message:  "deprecated call",
		Detail:   "d",
		Hint:     "h",
		Where:    "SQL function f",
		File:     "elog.c",
		Line:     "12",
		Routine:  "f",
	}
	r := FromPQ(src)
	assert.Equal(t, Warning, r.Level)
	assert.Equal(t, CodeDeprecatedFeature, r.CodeVal())
	assert.Equal(t, "deprecated call", r.Err.Message())
	assert.Equal(t, "d", r.Err.Detail())
	assert.Equal(t, "h", r.Err.Hint())
	assert.Equal(t, "where=SQL function f", r.Err.ContextMessage())
	assert.Equal(t, Location{File: "elog.c", Line: 12, Function: "f"}, r.Err.Location())

	var back *pq.Error
	require.True(t, errors.As(r, &back))
	assert.Same(t, src, back)
}

func TestFromPQ_UnknownSeverityAndLocation(t *testing.T) {
	t.Parallel()

	r := FromPQ(&pq.Error{Severity: "ÉRREUR", Code: "XX000", Message: "m"})
	assert.Equal(t, Error, r.Level)
	assert.True(t, r.Err.Location().IsUnknown())
	assert.Equal(t, Report{}, FromPQ(nil))
}
