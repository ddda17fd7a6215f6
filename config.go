package lattice

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const defaultTargetChunkBytes = 16 * 1024

// Config configures a single World, §6. Scoped per-World rather than
// a package-level singleton, since a global singleton world is out of
// scope here.
type Config struct {
	// AllocFunc/FreeFunc are the raw pair of §4.1: supplying exactly
	// one and leaving the other nil fails world creation with
	// InvalidArgument. Leaving both nil selects the default allocator.
	AllocFunc func(size, align int) ([]byte, bool)
	FreeFunc  func(buf []byte)

	InitialEntityCapacity    int
	InitialComponentCapacity int
	TargetChunkBytes         int
	Logger                   *zap.Logger

	// metricsRegistry is set by WithMetrics; nil means no recorder is
	// attached and Stats() skips the observe step entirely.
	metricsRegistry *prometheus.Registry
}

// Option configures a Config via the functional-options idiom.
type Option func(*Config)

// WithAllocator installs a host-supplied Allocator, a convenience over
// setting AllocFunc/FreeFunc individually.
func WithAllocator(a Allocator) Option {
	return func(c *Config) {
		c.AllocFunc = a.Alloc
		c.FreeFunc = a.Free
	}
}

// WithInitialEntityCapacity pre-sizes the entity slot table.
func WithInitialEntityCapacity(n int) Option {
	return func(c *Config) { c.InitialEntityCapacity = n }
}

// WithInitialComponentCapacity pre-sizes the component registry.
func WithInitialComponentCapacity(n int) Option {
	return func(c *Config) { c.InitialComponentCapacity = n }
}

// WithTargetChunkBytes overrides the per-chunk byte budget used to
// derive rows_per_chunk (default 16 KiB).
func WithTargetChunkBytes(n int) Option {
	return func(c *Config) { c.TargetChunkBytes = n }
}

// WithLogger installs an ambient diagnostic logger; defaults to a
// no-op logger when unset.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func newConfig(opts ...Option) (Config, Allocator, error) {
	c := Config{
		TargetChunkBytes: defaultTargetChunkBytes,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.TargetChunkBytes <= 0 {
		c.TargetChunkBytes = defaultTargetChunkBytes
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	haveAlloc := c.AllocFunc != nil
	haveFree := c.FreeFunc != nil
	if haveAlloc != haveFree {
		return Config{}, nil, InvalidArgumentError{Reason: "allocator alloc/free pair must be supplied together or not at all"}
	}
	var alloc Allocator
	if haveAlloc {
		alloc = funcAllocator{alloc: c.AllocFunc, free: c.FreeFunc}
	} else {
		alloc = defaultAllocator{}
		c.Logger.Debug("no host allocator supplied, falling back to the runtime allocator")
	}
	return c, alloc, nil
}

// funcAllocator adapts a raw AllocFunc/FreeFunc pair to the Allocator
// interface used internally by chunk storage.
type funcAllocator struct {
	alloc func(size, align int) ([]byte, bool)
	free  func(buf []byte)
}

func (f funcAllocator) Alloc(size, align int) ([]byte, bool) { return f.alloc(size, align) }
func (f funcAllocator) Free(buf []byte)                      { f.free(buf) }
