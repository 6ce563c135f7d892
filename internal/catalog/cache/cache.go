// Package cache memoizes normalized catalogs and decides — in one auditable
// place — when an upstream failure is swallowed. Callers always get a catalog
// back: fresh, stale, or the static fallback, in that order of preference.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"rampgw/internal/catalog"
	"rampgw/internal/platform/metrics"
	"rampgw/internal/upstream"
)

// Domain names the kind of lookup a key caches. Quote and session calls never
// pass through here: they are single-use and a cached quote is stale pricing.
type Domain string

const (
	DomainConfig  Domain = "config"
	DomainOptions Domain = "options"
)

// Key identifies one cached catalog by the exact parameter tuple that
// produced it.
type Key struct {
	Domain      Domain
	Direction   catalog.Direction
	Country     string
	Subdivision string
}

// String renders the key for store backends.
func (k Key) String() string {
	return fmt.Sprintf("catalog:%s:%s:%s:%s", k.Domain, k.Direction, k.Country, k.Subdivision)
}

// Entry is a stored catalog plus its storage time. Entries are never deleted;
// an expired entry stays around as the stale fallback until replaced.
type Entry struct {
	Value    *catalog.Catalog `json:"value"`
	StoredAt time.Time        `json:"stored_at"`
}

// Store persists entries. Implementations must keep expired entries.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, entry *Entry) error
}

// Fetcher performs the actual signed upstream fetch plus normalization.
type Fetcher func(ctx context.Context) (*catalog.Catalog, error)

// Cache is the resilience layer in front of upstream catalog lookups.
type Cache struct {
	store   Store
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics attaches the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New builds a Cache over the given store.
func New(store Store, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch returns the catalog for key, calling fetch only on a miss or
// expiry. Failures never propagate: a stale entry is served if one exists,
// the static fallback otherwise. Concurrent misses for the same key collapse
// into a single upstream call.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, fetch Fetcher) *catalog.Catalog {
	k := key.String()

	if entry, ok := c.lookup(ctx, k); ok && c.fresh(entry) {
		c.inc(func(m *metrics.Metrics) { m.CacheHits.WithLabelValues(string(key.Domain)).Inc() })
		return entry.Value
	}

	value, err, _ := c.group.Do(k, func() (any, error) {
		// Re-check under the flight: another caller may have just
		// refreshed this key.
		if entry, ok := c.lookup(ctx, k); ok && c.fresh(entry) {
			return entry.Value, nil
		}
		c.inc(func(m *metrics.Metrics) { m.CacheMisses.WithLabelValues(string(key.Domain)).Inc() })
		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(ctx, k, &Entry{Value: fetched, StoredAt: c.now()}); err != nil {
			// A broken store degrades durability, not the response.
			c.logger.WarnContext(ctx, "catalog cache store write failed", "key", k, "error", err.Error())
		}
		return fetched, nil
	})
	if err == nil {
		return value.(*catalog.Catalog)
	}

	c.logDegrade(ctx, k, err)

	if entry, ok := c.lookup(ctx, k); ok {
		c.inc(func(m *metrics.Metrics) { m.CacheStale.WithLabelValues(string(key.Domain)).Inc() })
		return entry.Value
	}

	c.inc(func(m *metrics.Metrics) { m.CacheFallbacks.WithLabelValues(string(key.Domain)).Inc() })
	return fallbackFor(key)
}

func (c *Cache) lookup(ctx context.Context, k string) (*Entry, bool) {
	entry, ok, err := c.store.Get(ctx, k)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog cache store read failed", "key", k, "error", err.Error())
		return nil, false
	}
	return entry, ok
}

func (c *Cache) fresh(entry *Entry) bool {
	return c.now().Sub(entry.StoredAt) < c.ttl
}

// logDegrade keeps the failure visible even though the caller never sees it.
// Authentication failures log at Error: silently degrading through credential
// rot would otherwise mask a misconfiguration indefinitely.
func (c *Cache) logDegrade(ctx context.Context, k string, err error) {
	if upstream.IsAuthError(err) {
		c.logger.ErrorContext(ctx, "catalog fetch failed: upstream rejected credentials",
			"key", k, "error", err.Error())
		return
	}
	c.logger.WarnContext(ctx, "catalog fetch failed, degrading",
		"key", k, "error", err.Error())
}

func (c *Cache) inc(f func(*metrics.Metrics)) {
	if c.metrics != nil {
		f(c.metrics)
	}
}

func fallbackFor(key Key) *catalog.Catalog {
	if key.Domain == DomainConfig {
		return catalog.FallbackConfig()
	}
	return catalog.FallbackOptions(key.Direction)
}
