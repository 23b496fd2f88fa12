package pgguard_test

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xgx-io/pgguard"
	"github.com/xgx-io/pgguard/pgguardtest"
)

func TestGuard_ReturnsValueWithoutHostCalls(t *testing.T) {
	be, h := newBackend(t, 16)
	type row struct {
		id   int
		name string
	}
	want := row{id: 7, name: "seven"}

	got, res := pgguardtest.CallValue(h, func() row {
		return pgguard.Guard(be, func() row { return want })
	})
	assert.Equal(t, pgguardtest.Returned, res.Outcome)
	assert.Equal(t, want, got)
	assert.Empty(t, h.Trace())
}

func TestGuard_GenericFailureReportedAtPanicSite(t *testing.T) {
	for _, v := range conventions {
		t.Run(v.String(), func(t *testing.T) {
			be, h := newBackend(t, v)
			res := h.Call(func() { pgguard.Guard(be, failDivide) })

			require.Equal(t, pgguardtest.Errored, res.Outcome)
			assert.Equal(t, pgguard.CodeInternalError, res.Error.Code)
			assert.Equal(t, "divide by zero", res.Error.Message)
			assert.True(t, strings.HasSuffix(res.Error.File, "m.x"), res.Error.File)
			assert.Equal(t, 42, res.Error.Line)
			assert.Empty(t, h.Violations())
		})
	}
}

func TestGuard_DeprecatedCallScenario(t *testing.T) {
	be, h := newBackend(t, 16)
	rep := pgguard.NewReport(pgguard.CodeDeprecatedFeature, "deprecated call")

	res := h.Call(func() { be.Ereport(pgguard.Warning, rep) })
	assert.Equal(t, pgguardtest.Returned, res.Outcome)

	returned := false
	res = h.Call(func() {
		pgguard.Guard(be, func() int { panic(rep.At(pgguard.Error)) })
		returned = true
	})
	assert.False(t, returned)
	require.Equal(t, pgguardtest.Errored, res.Outcome)
	assert.Equal(t, pgguard.CodeDeprecatedFeature, res.Error.Code)
	assert.Equal(t, "deprecated call", res.Error.Message)
	assert.Len(t, h.Emitted(), 2)
}

func TestGuard_ExplicitReportsAtErrorAndAboveNeverReturn(t *testing.T) {
	for _, l := range []pgguard.Level{pgguard.Error, pgguard.Fatal, pgguard.Panic} {
		be, h := newBackend(t, 16)
		returned := false
		res := h.Call(func() {
			pgguard.Guard(be, func() int { panic(pgguard.NewReport(pgguard.CodeDataException, "x").At(l)) })
			returned = true
		})
		assert.False(t, returned, l.String())
		want := pgguardtest.Terminated
		if l == pgguard.Error {
			want = pgguardtest.Errored
		}
		assert.Equal(t, want, res.Outcome, l.String())
		assert.Equal(t, l, res.Error.Level)
	}
}

func TestGuard_FatalInsideBodyTerminates(t *testing.T) {
	for _, v := range conventions {
		for _, l := range []pgguard.Level{pgguard.Fatal, pgguard.Panic} {
			t.Run(v.String()+"/"+l.String(), func(t *testing.T) {
				be, h := newBackend(t, v)
				cleaned, returned := false, false
				res := h.Call(func() {
					pgguard.Guard(be, func() int {
						defer func() { cleaned = true }()
						be.Ereport(l, pgguard.NewReport(pgguard.CodeAdminShutdown, "bye"))
						return 1
					})
					returned = true
				})

				assert.False(t, returned)
				assert.True(t, cleaned)
				require.Equal(t, pgguardtest.Terminated, res.Outcome)
				assert.Equal(t, l, res.Error.Level)
				assert.Equal(t, pgguard.CodeAdminShutdown, res.Error.Code)
				assert.Len(t, h.Emitted(), 1, "termination is not re-reported by the boundary")
				assert.Empty(t, h.Violations())
			})
		}
	}
}

func TestGuard_BacktraceReachesDetail(t *testing.T) {
	pgguard.InstallPanicHook(pgguard.CaptureBacktrace(true))
	t.Cleanup(func() { pgguard.InstallPanicHook(pgguard.CaptureBacktrace(false)) })

	for _, v := range conventions {
		t.Run(v.String(), func(t *testing.T) {
			be, h := newBackend(t, v)
			res := h.Call(func() { pgguard.Guard(be, failDivide) })

			require.Equal(t, pgguardtest.Errored, res.Outcome)
			assert.Equal(t, 42, res.Error.Line)
			assert.Contains(t, res.Error.Detail, "failDivide")
			assert.Contains(t, res.Error.Detail, "m.x:42")
			assert.Empty(t, h.Violations())
		})
	}
}

func TestGuard_SubErrorReportIsADefect(t *testing.T) {
	be, h := newBackend(t, 16)
	res := h.Call(func() {
		pgguard.Guard(be, func() int { panic(pgguard.NewReport(pgguard.CodeWarning, "too mild").At(pgguard.Warning)) })
	})

	require.Equal(t, pgguardtest.Crashed, res.Outcome)
	err, ok := res.Crash.(error)
	require.True(t, ok)
	assert.True(t, pgguard.IsDefect(err))
	require.Len(t, h.Emitted(), 1, "the diagnostic itself still reaches the host")
}

func TestGuard_HostErrorIsReThrownNotReEmitted(t *testing.T) {
	for _, v := range conventions {
		t.Run(v.String(), func(t *testing.T) {
			be, h := newBackend(t, v)
			reached := false
			res := h.Call(func() {
				pgguard.Guard(be, func() int {
					raiseInHost(be, h, pgguard.CodeUniqueViolation, "duplicate key")
					reached = true
					return 1
				})
			})

			assert.False(t, reached)
			require.Equal(t, pgguardtest.Errored, res.Outcome)
			assert.Equal(t, pgguard.CodeUniqueViolation, res.Error.Code)
			assert.Len(t, h.Emitted(), 1)
			assert.Contains(t, h.Trace(), "rethrow")
			assert.Equal(t, pgguardtest.ErrorArena, res.Arena)
			assert.Empty(t, h.Violations())
		})
	}
}

func TestGuard_HostOriginatedSurvivesNestedUnwinding(t *testing.T) {
	be, h := newBackend(t, 16)
	cleaned := false
	res := h.Call(func() {
		pgguard.Guard(be, func() int {
			defer func() { cleaned = true }()
			func() {
				raiseInHost(be, h, pgguard.CodeQueryCanceled, "canceled")
			}()
			return 0
		})
	})
	assert.True(t, cleaned, "deferred Go cleanup runs before the re-throw")
	assert.Equal(t, pgguard.CodeQueryCanceled, res.Error.Code)
	assert.Len(t, h.Emitted(), 1)
}

func TestGuardErr(t *testing.T) {
	be, h := newBackend(t, 16)

	v, res := pgguardtest.CallValue(h, func() string {
		return pgguard.GuardErr(be, func() (string, error) { return "ok", nil })
	})
	assert.Equal(t, pgguardtest.Returned, res.Outcome)
	assert.Equal(t, "ok", v)

	res = h.Call(func() {
		pgguard.GuardErr(be, func() (int, error) {
			return 0, pgguard.NewReport(pgguard.CodeUniqueViolation, "dup")
		})
	})
	assert.Equal(t, pgguard.CodeUniqueViolation, res.Error.Code)

	res = h.Call(func() {
		pgguard.GuardErr(be, func() (int, error) { return 0, errors.New("plain") })
	})
	assert.Equal(t, pgguard.CodeDataException, res.Error.Code)
	assert.Equal(t, "plain", res.Error.Message)
	assert.True(t, strings.HasSuffix(res.Error.File, "guard_test.go"), res.Error.File)
	assert.Contains(t, res.Error.Function, "TestGuardErr")
}

func TestCallHost_PassesValueThrough(t *testing.T) {
	be, h := newBackend(t, 16)
	n := pgguard.CallHost(be, func() int { return 3 })
	assert.Equal(t, 3, n)
	assert.Empty(t, h.Emitted())
}

func TestCallHost_PanicsWithHostOriginated(t *testing.T) {
	be, h := newBackend(t, 16)
	assert.PanicsWithValue(t, pgguard.HostOriginated{}, func() {
		raiseInHost(be, h, pgguard.CodeDataException, "bad")
	})
	_, pending := h.Pending()
	assert.True(t, pending)
}

func TestBackend_WrongThreadIsADefect(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("thread ids are only checked on linux")
	}
	h := pgguardtest.NewHost(16)
	be, err := pgguard.New(h, pgguard.Config{HostVersion: 16})
	require.NoError(t, err)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	be.Notice("owner")

	done := make(chan any)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() { done <- recover() }()
		be.Notice("intruder")
	}()
	r := <-done

	err, ok := r.(error)
	require.True(t, ok, "%v", r)
	assert.True(t, pgguard.IsDefect(err))
	assert.True(t, pgguard.IsWrongThread(err))
	assert.Len(t, h.Emitted(), 1)

	be.ResetThread()
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() { done <- recover() }()
		be.Notice("new owner")
	}()
	assert.Nil(t, <-done)
}
