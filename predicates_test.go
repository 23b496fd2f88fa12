package pgguard

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, Code(""), CodeOf(errors.New("x")))

	rep := NewReport(CodeUniqueViolation, "dup")
	assert.Equal(t, CodeUniqueViolation, CodeOf(rep))
	assert.Equal(t, CodeUniqueViolation, CodeOf(fmt.Errorf("ctx: %w", rep)))
	assert.Equal(t, CodeUniqueViolation, CodeOf(errors.Join(errors.New("a"), rep)))
	assert.Equal(t, CodeUniqueViolation, CodeOf(multierror.Append(errors.New("a"), rep)))
	assert.Equal(t, CodeInternalError, CodeOf(newDefect("bad")))
}

func TestHasCode(t *testing.T) {
	t.Parallel()

	rep := NewReport(CodeUniqueViolation, "dup").At(Error)
	assert.True(t, HasCode(rep, CodeUniqueViolation))
	assert.False(t, HasCode(rep, CodeDataException))
	assert.False(t, HasCode(nil, ""))
}

func TestIsDefect(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDefect(newDefect("x")))
	assert.True(t, IsDefect(fmt.Errorf("wrapped: %w", newDefect("x"))))
	assert.False(t, IsDefect(NewReport(CodeInternalError, "x")))
	assert.False(t, IsDefect(nil))
}

func TestIsHostOriginated(t *testing.T) {
	t.Parallel()

	assert.True(t, IsHostOriginated(HostOriginated{}))
	assert.True(t, IsHostOriginated(&HostOriginated{}))
	assert.True(t, IsHostOriginated(fmt.Errorf("ctx: %w", HostOriginated{})))
	assert.False(t, IsHostOriginated(nil))
	assert.False(t, IsHostOriginated("host"))
	assert.False(t, IsHostOriginated(Reported{Report: NewReport(CodeDataException, "x").At(Error)}))
}

func TestIsWrongThread(t *testing.T) {
	t.Parallel()

	assert.True(t, IsWrongThread(wrapDefect(ErrWrongThread, "t")))
	assert.False(t, IsWrongThread(newDefect("t")))
}
