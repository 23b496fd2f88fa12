//go:build linux

package pgguard

import "golang.org/x/sys/unix"

// threadID returns the kernel id of the calling OS thread.
func threadID() int64 { return int64(unix.Gettid()) }
