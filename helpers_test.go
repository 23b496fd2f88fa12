package pgguard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xgx-io/pgguard"
	"github.com/xgx-io/pgguard/pgguardtest"
)

// newBackend returns a backend over a fresh fake host. The thread check is
// off: plain test goroutines are not pinned to one OS thread.
func newBackend(t *testing.T, v pgguard.HostVersion) (*pgguard.Backend, *pgguardtest.Host) {
	t.Helper()
	h := pgguardtest.NewHost(v)
	be, err := pgguard.New(h, pgguard.Config{HostVersion: v, SkipThreadCheck: true})
	require.NoError(t, err)
	return be, h
}

// raiseInHost calls into the host, which reports an error with code.
func raiseInHost(be *pgguard.Backend, h *pgguardtest.Host, code pgguard.Code, msg string) {
	pgguard.CallHostVoid(be, func() { h.Raise(pgguard.Error, code, msg) })
}

var conventions = []pgguard.HostVersion{12, 16}
