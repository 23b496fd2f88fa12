package pgguard_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgx-io/pgguard"
	"github.com/xgx-io/pgguard/pgguardtest"
)

func TestEreport_ErrorUnwindsAsReport(t *testing.T) {
	be, h := newBackend(t, 16)
	rep := pgguard.NewReport(pgguard.CodeDataException, "bad row")

	assert.PanicsWithValue(t, rep.At(pgguard.Error), func() { be.Ereport(pgguard.Error, rep) })
	assert.Empty(t, h.Emitted(), "ERROR is emitted by the boundary, not by Ereport")
}

func TestElog_Helpers(t *testing.T) {
	be, h := newBackend(t, 16)
	be.Log("l %d", 1)
	be.Info("i %d", 2)
	be.Notice("n %d", 3)
	be.Warning("w %d", 4)
	be.Debug1("d %d", 5)
	be.Elog(pgguard.LogServerOnly, "s %d", 6)

	got := h.Emitted()
	require.Len(t, got, 6)
	wantLevels := []pgguard.Level{pgguard.Log, pgguard.Info, pgguard.Notice, pgguard.Warning, pgguard.Debug1, pgguard.LogServerOnly}
	wantMsgs := []string{"l 1", "i 2", "n 3", "w 4", "d 5", "s 6"}
	for i, d := range got {
		assert.Equal(t, wantLevels[i], d.Level)
		assert.Equal(t, wantMsgs[i], d.Message)
		assert.True(t, strings.HasSuffix(d.Function, ".TestElog_Helpers"), d.Function)
	}
	assert.Equal(t, pgguard.CodeWarning, got[3].Code)
	assert.Equal(t, pgguard.CodeSuccessfulCompletion, got[0].Code)
}

func TestElog_ErrorDefaultsToInternalError(t *testing.T) {
	be, h := newBackend(t, 16)
	res := h.Call(func() {
		pgguard.Guard(be, func() int {
			be.Elog(pgguard.Error, "failed: %s", "reason")
			return 0
		})
	})
	assert.Equal(t, pgguard.CodeInternalError, res.Error.Code)
	assert.Equal(t, "failed: reason", res.Error.Message)
}

func TestRaise_LocatedAtCaller(t *testing.T) {
	be, h := newBackend(t, 12)
	res := h.Call(func() {
		pgguard.Guard(be, func() int {
			pgguard.Raise(pgguard.CodeRaiseException, "custom %d", 7)
			return 0
		})
	})
	require.Equal(t, pgguardtest.Errored, res.Outcome)
	assert.Equal(t, pgguard.CodeRaiseException, res.Error.Code)
	assert.Equal(t, "custom 7", res.Error.Message)
	assert.True(t, strings.HasSuffix(res.Error.File, "elog_test.go"), res.Error.File)
}

type codedErr struct{}

func (codedErr) Error() string         { return "coded" }
func (codedErr) CodeVal() pgguard.Code { return pgguard.CodeNumericValueOutOfRange }

func TestMust(t *testing.T) {
	assert.Equal(t, 3, pgguard.Must(3, nil))

	rep := pgguard.NewReport(pgguard.CodeUniqueViolation, "dup")
	assert.PanicsWithValue(t, rep.At(pgguard.Error), func() { pgguard.Must(0, rep) })

	warn := rep.At(pgguard.Warning)
	assert.PanicsWithValue(t, warn, func() { pgguard.Must(0, warn) })

	for err, code := range map[error]pgguard.Code{
		errors.New("plain"):            pgguard.CodeDataException,
		codedErr{}:                     pgguard.CodeNumericValueOutOfRange,
		fmt.Errorf("wrapped: %w", rep): pgguard.CodeUniqueViolation,
	} {
		func() {
			defer func() {
				r, ok := recover().(pgguard.Report)
				require.True(t, ok)
				assert.Equal(t, pgguard.Error, r.Level)
				assert.Equal(t, code, r.CodeVal(), err.Error())
			}()
			pgguard.Must(0, err)
		}()
	}
}
