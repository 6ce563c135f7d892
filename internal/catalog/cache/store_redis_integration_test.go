//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rampgw/internal/catalog"
	"rampgw/internal/catalog/cache"
	"rampgw/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cache.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = cache.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	_, ok, err := s.store.Get(ctx, "catalog:options:sell:US:CA")
	s.Require().NoError(err)
	s.False(ok)

	entry := &cache.Entry{
		Value: &catalog.Catalog{
			Assets: []catalog.Asset{{
				Code:     "USDC",
				Name:     "USD Coin",
				Networks: []catalog.Network{{ID: "base", Name: "Base"}},
			}},
			PaymentMethods: []catalog.PaymentMethod{{
				ID:     "ACH_BANK_ACCOUNT",
				Name:   "Bank Transfer (ACH)",
				Limits: map[string]catalog.Limit{"USD": {Min: "10", Max: "25000"}},
			}},
		},
		StoredAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Set(ctx, "catalog:options:sell:US:CA", entry))

	got, ok, err := s.store.Get(ctx, "catalog:options:sell:US:CA")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(entry.Value, got.Value)
	s.True(entry.StoredAt.Equal(got.StoredAt))
}

func (s *RedisStoreSuite) TestEntriesSurviveWithoutExpiry() {
	ctx := context.Background()

	entry := &cache.Entry{Value: catalog.FallbackOptions(catalog.Sell), StoredAt: time.Now().Add(-24 * time.Hour)}
	s.Require().NoError(s.store.Set(ctx, "catalog:options:sell:GB:", entry))

	ttl := s.redis.Client.TTL(ctx, "catalog:options:sell:GB:").Val()
	s.Equal(time.Duration(-1), ttl, "stale entries must never be evicted by redis")
}

func (s *RedisStoreSuite) TestOverwriteReplacesEntry() {
	ctx := context.Background()

	first := &cache.Entry{Value: catalog.FallbackConfig(), StoredAt: time.Now().Add(-time.Hour)}
	s.Require().NoError(s.store.Set(ctx, "catalog:config:sell::", first))

	second := &cache.Entry{Value: catalog.FallbackConfig(), StoredAt: time.Now()}
	s.Require().NoError(s.store.Set(ctx, "catalog:config:sell::", second))

	got, ok, err := s.store.Get(ctx, "catalog:config:sell::")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.True(got.StoredAt.After(first.StoredAt))
}