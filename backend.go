package pgguard

import (
	"github.com/go-pkgz/lgr"
)

// Backend binds the bridge to one host process: the host calls, the
// version-dependent encoding and the thread that owns them. Create one per
// host process with New and share it by pointer.
type Backend struct {
	host    Host
	version HostVersion
	conv    Convention
	log     lgr.L
	metrics *Metrics

	threadCheck bool
	owner       threadOwner
}

// Option customizes a Backend.
type Option func(*Backend)

// WithLogger sets the logger for boundary decisions. Default is lgr.NoOp.
func WithLogger(l lgr.L) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// WithMetrics sets the counters updated at the boundary. Default is none.
func WithMetrics(m *Metrics) Option {
	return func(b *Backend) { b.metrics = m }
}

// New makes a Backend for host configured by cfg.
func New(host Host, cfg Config, opts ...Option) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		host:        host,
		version:     cfg.HostVersion,
		conv:        cfg.HostVersion.Convention(),
		log:         lgr.NoOp,
		threadCheck: !cfg.SkipThreadCheck,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log.Logf("[DEBUG] pgguard backend for %s, %s convention", b.version, b.conv)
	return b, nil
}

// Version returns the host major version the backend encodes for.
func (b *Backend) Version() HostVersion { return b.version }

// Convention returns the diagnostic convention in use.
func (b *Backend) Convention() Convention { return b.conv }

// Host returns the host the backend talks to.
func (b *Backend) Host() Host { return b.host }

// ResetThread forgets the owning thread, e.g. in a forked child process.
func (b *Backend) ResetThread() { b.owner.reset() }

func (b *Backend) checkThread() {
	if b.threadCheck {
		b.owner.check()
	}
}
