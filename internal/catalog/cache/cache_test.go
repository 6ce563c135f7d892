package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rampgw/internal/catalog"
	"rampgw/internal/upstream"
)

type CacheSuite struct {
	suite.Suite
	now   time.Time
	cache *Cache
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.cache = New(
		NewMemoryStore(),
		15*time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return s.now }),
	)
}

func optionsKey() Key {
	return Key{Domain: DomainOptions, Direction: catalog.Sell, Country: "US", Subdivision: "CA"}
}

func succeeding(value *catalog.Catalog, calls *atomic.Int32) Fetcher {
	return func(ctx context.Context) (*catalog.Catalog, error) {
		calls.Add(1)
		return value, nil
	}
}

func failing(err error, calls *atomic.Int32) Fetcher {
	return func(ctx context.Context) (*catalog.Catalog, error) {
		calls.Add(1)
		return nil, err
	}
}

func sampleCatalog(asset string) *catalog.Catalog {
	return &catalog.Catalog{Assets: []catalog.Asset{{Code: asset, Name: asset}}}
}

func (s *CacheSuite) TestFreshEntryServedWithoutFetch() {
	ctx := context.Background()
	var calls atomic.Int32

	first := s.cache.GetOrFetch(ctx, optionsKey(), succeeding(sampleCatalog("USDC"), &calls))
	require.Equal(s.T(), "USDC", first.Assets[0].Code)

	// Second call within TTL: the failing fetcher must never run.
	second := s.cache.GetOrFetch(ctx, optionsKey(), failing(errors.New("boom"), &calls))
	assert.Equal(s.T(), first, second)
	assert.Equal(s.T(), int32(1), calls.Load())
}

func (s *CacheSuite) TestExpiredEntryRefetches() {
	ctx := context.Background()
	var calls atomic.Int32

	s.cache.GetOrFetch(ctx, optionsKey(), succeeding(sampleCatalog("USDC"), &calls))
	s.now = s.now.Add(16 * time.Minute)
	refreshed := s.cache.GetOrFetch(ctx, optionsKey(), succeeding(sampleCatalog("ETH"), &calls))

	assert.Equal(s.T(), "ETH", refreshed.Assets[0].Code)
	assert.Equal(s.T(), int32(2), calls.Load())
}

func (s *CacheSuite) TestFallbackWhenNothingCached() {
	ctx := context.Background()
	var calls atomic.Int32

	got := s.cache.GetOrFetch(ctx, optionsKey(), failing(&upstream.TransportError{Err: errors.New("timeout")}, &calls))
	require.NotNil(s.T(), got, "a failure must never surface to the caller")
	assert.Equal(s.T(), catalog.FallbackOptions(catalog.Sell), got)

	cfgKey := Key{Domain: DomainConfig, Direction: catalog.Sell}
	got = s.cache.GetOrFetch(ctx, cfgKey, failing(&upstream.RejectedError{Status: http.StatusBadGateway}, &calls))
	assert.Equal(s.T(), catalog.FallbackConfig(), got)
}

func (s *CacheSuite) TestStaleOverEmpty() {
	ctx := context.Background()
	var calls atomic.Int32

	live := sampleCatalog("USDC")
	s.cache.GetOrFetch(ctx, optionsKey(), succeeding(live, &calls))

	// Permanent upstream failure after expiry: the last good value wins,
	// not the static fallback.
	s.now = s.now.Add(time.Hour)
	for range 3 {
		got := s.cache.GetOrFetch(ctx, optionsKey(), failing(&upstream.TransportError{Err: errors.New("down")}, &calls))
		assert.Equal(s.T(), live, got)
	}
	assert.Equal(s.T(), int32(4), calls.Load())
}

func (s *CacheSuite) TestAuthFailureStillDegrades() {
	ctx := context.Background()
	var calls atomic.Int32

	got := s.cache.GetOrFetch(ctx, optionsKey(), failing(&upstream.AuthError{Status: 401, Detail: "bad key"}, &calls))
	assert.Equal(s.T(), catalog.FallbackOptions(catalog.Sell), got)
}

func (s *CacheSuite) TestConcurrentMissesCollapse() {
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (*catalog.Catalog, error) {
		calls.Add(1)
		<-release
		return sampleCatalog("USDC"), nil
	}

	const goroutines = 8
	results := make([]*catalog.Catalog, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.cache.GetOrFetch(ctx, optionsKey(), fetch)
		}(i)
	}

	// Give every goroutine time to reach the flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(s.T(), int32(1), calls.Load(), "concurrent misses for one key collapse into one fetch")
	for _, got := range results {
		assert.Equal(s.T(), "USDC", got.Assets[0].Code)
	}
}

func (s *CacheSuite) TestDistinctKeysDoNotShareEntries() {
	ctx := context.Background()
	var calls atomic.Int32

	us := s.cache.GetOrFetch(ctx, optionsKey(), succeeding(sampleCatalog("USDC"), &calls))
	gbKey := Key{Domain: DomainOptions, Direction: catalog.Sell, Country: "GB"}
	gb := s.cache.GetOrFetch(ctx, gbKey, succeeding(sampleCatalog("BTC"), &calls))

	assert.NotEqual(s.T(), us, gb)
	assert.Equal(s.T(), int32(2), calls.Load())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := &Entry{Value: sampleCatalog("USDC"), StoredAt: time.Now()}
	require.NoError(t, store.Set(ctx, "k", entry))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}
