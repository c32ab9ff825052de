// Package memo holds the one expensive result a dashboard computes: its
// loaded table.
//
// A Cache is an explicit object owned by whoever drives the reactive passes.
// The first Get runs the loader; every later Get returns the stored value
// without calling it again. Failed loads are not stored, so the next pass
// retries. There is no expiry and no size bound.
//
//	cache := memo.New(memo.Key("cancer", deathsURL, popURL), loadCancer)
//	tbl, err := cache.Get(ctx)
package memo

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/spektr-org/vizdash/metrics"
)

var tracer = otel.Tracer("github.com/spektr-org/vizdash/memo")

// Loader computes the cached value. It takes only a context: any arguments
// are fixed when the cache is built and belong in its key.
type Loader[T any] func(ctx context.Context) (T, error)

// Key joins a loader's identity and its constant arguments.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	name    string
}

// WithLogger sets the logger for load events.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records loads and hits under name.
func WithMetrics(m *metrics.Metrics, name string) Option {
	return func(s *settings) {
		s.metrics = m
		s.name = name
	}
}

// Cache is a single-entry memo of a Loader's result.
type Cache[T any] struct {
	key  string
	load Loader[T]
	cfg  settings

	flight singleflight.Group
	loads  atomic.Int64

	mu     sync.Mutex
	value  T
	loaded bool
	// gen advances on Invalidate; a load started under an older generation
	// is returned to its callers but not stored.
	gen uint64
}

// New returns an empty cache for load under key.
func New[T any](key string, load Loader[T], opts ...Option) *Cache[T] {
	cfg := settings{logger: slog.Default(), name: key}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache[T]{key: key, load: load, cfg: cfg}
}

// Key returns the cache key.
func (c *Cache[T]) Key() string { return c.key }

// Loads returns how many times the loader has been invoked.
func (c *Cache[T]) Loads() int { return int(c.loads.Load()) }

// Loaded reports whether a value is stored.
func (c *Cache[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Cache[T]) stored() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.loaded
}

// Get returns the stored value, running the loader on first use.
// Concurrent first calls share one load.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	if v, ok := c.stored(); ok {
		c.cfg.metrics.CacheHit(c.cfg.name)
		return v, nil
	}

	v, err, _ := c.flight.Do(c.key, func() (any, error) {
		// populated while waiting for the flight
		if v, ok := c.stored(); ok {
			return v, nil
		}
		return c.fill(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *Cache[T]) fill(ctx context.Context) (T, error) {
	ctx, span := tracer.Start(ctx, "memo.load",
		trace.WithAttributes(attribute.String("memo.key", c.key)))
	defer span.End()

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	start := time.Now()
	n := c.loads.Add(1)
	v, err := c.load(ctx)
	elapsed := time.Since(start)
	c.cfg.metrics.ObserveLoad(c.cfg.name, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.cfg.logger.Warn("load failed",
			slog.String("key", c.key),
			slog.Int64("attempt", n),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
		return v, err
	}

	c.mu.Lock()
	stale := c.gen != gen
	if !stale {
		c.value = v
		c.loaded = true
	}
	c.mu.Unlock()

	if stale {
		c.cfg.logger.Info("load superseded by invalidate, not cached",
			slog.String("key", c.key),
			slog.Duration("elapsed", elapsed))
		return v, nil
	}
	c.cfg.logger.Info("load cached",
		slog.String("key", c.key),
		slog.Duration("elapsed", elapsed))
	return v, nil
}

// Invalidate drops the stored value. The next Get loads again, and a load
// already in flight is not stored.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	var zero T
	c.value = zero
	c.loaded = false
	c.gen++
	c.mu.Unlock()
	c.flight.Forget(c.key)
	c.cfg.logger.Debug("cache invalidated", slog.String("key", c.key))
}
