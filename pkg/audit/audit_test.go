package audit

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSaveAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	event := Event{
		Timestamp: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		Action:    ActionQuoteCreated,
		Direction: "sell",
		Asset:     "USDC",
		Amount:    "100",
	}
	require.NoError(t, store.Save(ctx, event))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, event, events[0])

	// The returned slice is a copy; mutating it must not touch the store.
	events[0].Asset = "BTC"
	assert.Equal(t, "USDC", store.Events()[0].Asset)
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, Event{Action: ActionSessionCreated})
		}()
	}
	wg.Wait()

	assert.Len(t, store.Events(), 20)
}

func TestPublishContextSurvivesRequestCancellation(t *testing.T) {
	type ctxKey struct{}
	parent := context.WithValue(context.Background(), ctxKey{}, "req-1")
	parent, cancel := context.WithCancel(parent)
	cancel()

	detached := publishContext(parent)

	assert.NoError(t, detached.Err(), "delivery must not be aborted by the handler returning")
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)
	assert.Equal(t, "req-1", detached.Value(ctxKey{}), "request-scoped values still ride along")
}

func TestEventJSONOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(Event{
		Timestamp: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		Action:    ActionSessionCreated,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "session_created", decoded["action"])
	assert.NotContains(t, decoded, "asset")
	assert.NotContains(t, decoded, "amount")
}
