package ramp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rampgw/internal/catalog"
)

func TestFlowStoreSweepsIdleFlows(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	store := newFlowStore(func() time.Time { return now })

	stale := store.add(catalog.Sell, nil)

	now = now.Add(flowIdleTTL + time.Minute)
	fresh := store.add(catalog.Sell, nil)

	_, ok := store.get(stale)
	assert.False(t, ok, "an idle flow is gone after the TTL")
	_, ok = store.get(fresh)
	assert.True(t, ok)
}

func TestFlowStoreGetRefreshesIdleClock(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	store := newFlowStore(func() time.Time { return now })

	id := store.add(catalog.Sell, nil)

	now = now.Add(flowIdleTTL - time.Minute)
	_, ok := store.get(id)
	require.True(t, ok)

	// Another near-TTL stretch of inactivity; the get above reset the clock.
	now = now.Add(flowIdleTTL - time.Minute)
	store.add(catalog.Sell, nil)
	_, ok = store.get(id)
	assert.True(t, ok, "activity keeps a flow alive")
}

func TestFlowStoreEnforcesCap(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	store := newFlowStore(func() time.Time { return now })

	first := store.add(catalog.Sell, nil)
	for i := 1; i < maxFlows; i++ {
		now = now.Add(time.Millisecond)
		store.add(catalog.Sell, nil)
	}
	require.Equal(t, maxFlows, store.len())

	now = now.Add(time.Millisecond)
	store.add(catalog.Sell, nil)

	assert.Equal(t, maxFlows, store.len(), "the cap holds")
	_, ok := store.get(first)
	assert.False(t, ok, "the stalest flow makes room")
}
