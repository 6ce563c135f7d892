package ramp

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"rampgw/internal/catalog"
	"rampgw/internal/selection"
)

const (
	// maxFlows bounds the store; an abandoned flow is cheap to recreate, so
	// evicting the stalest one under pressure costs the user one country pick.
	maxFlows    = 10_000
	flowIdleTTL = time.Hour
)

// flowStore keeps live selection flows in memory. A flow is one user's
// in-progress selection; it never outlives the process, so no persistent
// backend is warranted, but idle flows are swept so the map cannot grow
// without bound.
type flowStore struct {
	mu    sync.Mutex
	flows map[string]*flowEntry
	now   func() time.Time
}

type flowEntry struct {
	direction catalog.Direction
	flow      *selection.Flow
	touched   time.Time
}

func newFlowStore(now func() time.Time) *flowStore {
	return &flowStore{flows: map[string]*flowEntry{}, now: now}
}

func (s *flowStore) add(direction catalog.Direction, flow *selection.Flow) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.flows[id] = &flowEntry{direction: direction, flow: flow, touched: s.now()}
	return id
}

func (s *flowStore) get(id string) (flowEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.flows[id]
	if !ok {
		return flowEntry{}, false
	}
	entry.touched = s.now()
	return *entry, true
}

// sweep drops idle flows and, at the cap, the stalest entry. Callers hold the
// lock.
func (s *flowStore) sweep() {
	cutoff := s.now().Add(-flowIdleTTL)
	for id, entry := range s.flows {
		if entry.touched.Before(cutoff) {
			delete(s.flows, id)
		}
	}
	for len(s.flows) >= maxFlows {
		var stalestID string
		var stalest time.Time
		for id, entry := range s.flows {
			if stalestID == "" || entry.touched.Before(stalest) {
				stalestID, stalest = id, entry.touched
			}
		}
		delete(s.flows, stalestID)
	}
}

func (s *flowStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}
