// Package audit records transaction-initiating actions. Catalog lookups are
// not audited — only the operations that can move money: quote and session
// creation.
package audit

import (
	"context"
	"sync"
	"time"
)

// Action names the audited operation.
type Action string

const (
	ActionQuoteCreated   Action = "quote_created"
	ActionSessionCreated Action = "session_created"
)

// Event is emitted from the service layer. Transport-agnostic so stores and
// publishers can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	RequestID string    `json:"request_id,omitempty"`
	FlowID    string    `json:"flow_id,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Country   string    `json:"country,omitempty"`
	Asset     string    `json:"asset,omitempty"`
	Network   string    `json:"network,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Amount    string    `json:"amount,omitempty"`
}

// Store persists events.
type Store interface {
	Save(ctx context.Context, event Event) error
}

// MemoryStore keeps events in memory; the default when no Postgres DSN is
// configured, and the workhorse in tests.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save appends the event.
func (s *MemoryStore) Save(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything saved so far.
func (s *MemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
