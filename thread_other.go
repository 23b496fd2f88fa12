//go:build !linux

package pgguard

// threadID is unavailable off Linux; zero disables affinity checks and
// shares one panic-location cell.
// TODO: use pthread_threadid_np on darwin once a cgo build of the bridge exists there.
func threadID() int64 { return 0 }
