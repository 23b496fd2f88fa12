package pgguard

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type numericErr struct{}

func (numericErr) Error() string { return "out of range" }
func (numericErr) CodeVal() Code { return CodeNumericValueOutOfRange }

func TestFrom(t *testing.T) {
	t.Parallel()

	assert.Nil(t, From(nil))

	rep := NewReport(CodeUniqueViolation, "dup")
	assert.Same(t, rep, From(rep))
	assert.Same(t, rep, From(fmt.Errorf("ctx: %w", rep)))

	plain := errors.New("plain")
	got := From(plain)
	assert.Equal(t, CodeDataException, got.CodeVal())
	assert.Equal(t, "plain", got.Message())
	assert.ErrorIs(t, got, plain)
	assert.True(t, strings.HasSuffix(got.Location().Function, ".TestFrom"))

	assert.Equal(t, CodeNumericValueOutOfRange, From(numericErr{}).CodeVal())
}

func TestWrap(t *testing.T) {
	t.Parallel()

	got := Wrap(errors.New("disk full"), "can't write row", "relation", "users")
	assert.Equal(t, CodeDataException, got.CodeVal())
	assert.Equal(t, "can't write row", got.Message())
	assert.Equal(t, "disk full", got.Detail())
	assert.Equal(t, "relation=users", got.ContextMessage())

	inner := NewReport(CodeUniqueViolation, "dup")
	assert.Equal(t, CodeUniqueViolation, Wrap(inner, "insert failed").CodeVal())

	empty := Wrap(nil, "nothing", "k", 1)
	assert.Equal(t, CodeInternalError, empty.CodeVal())
	assert.Nil(t, errors.Unwrap(empty))
}

func TestRecode(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Recode(nil, CodeDataException))
	rep := NewReport(CodeDataException, "x")
	assert.Equal(t, CodeInvalidTextRepresentation, Recode(rep, CodeInvalidTextRepresentation).CodeVal())
	assert.Equal(t, CodeDataException, rep.CodeVal())
	assert.Equal(t, CodeAssertFailure, Recode(errors.New("y"), CodeAssertFailure).CodeVal())
}
