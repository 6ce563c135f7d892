package selection

import (
	"sync"

	"rampgw/internal/catalog"
)

// Flow owns one user session's selection state. Repairs are synchronous and
// happen before any derived fetch is issued; every fetch is tagged with the
// version it was issued for, and results for superseded versions are dropped
// so a slow response can never overwrite a newer selection's data.
type Flow struct {
	mu       sync.Mutex
	resolver *Resolver
	state    State
	version  uint64
	catalog  *catalog.Catalog
}

// Snapshot captures the state a fetch was issued against.
type Snapshot struct {
	State   State
	Version uint64
}

// NewFlow creates a Flow starting from an initial (already repaired) state.
func NewFlow(resolver *Resolver, initial State) *Flow {
	f := &Flow{resolver: resolver}
	f.state = resolver.Repair(initial, FieldCountry, nil)
	return f
}

// Apply repairs the state after a single-field change and returns the
// snapshot any derived fetch must carry.
func (f *Flow) Apply(field Field, value string) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.state
	switch field {
	case FieldCountry:
		s.Country = value
	case FieldSubdivision:
		s.Subdivision = value
	case FieldAsset:
		s.Asset = value
	case FieldNetwork:
		s.Network = value
	case FieldFiatCurrency:
		s.FiatCurrency = value
	case FieldPaymentMethod:
		s.PaymentMethod = value
	}

	f.state = f.resolver.Repair(s, field, f.catalog)
	f.version++
	return Snapshot{State: f.state, Version: f.version}
}

// Install records the catalog fetched for snap and re-validates the state
// against it. It reports false — and changes nothing — when the snapshot has
// been superseded by a newer selection.
func (f *Flow) Install(snap Snapshot, cat *catalog.Catalog) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if snap.Version != f.version {
		return false
	}
	f.catalog = cat
	// The fresh catalog may invalidate parts of the selection it was
	// fetched for (e.g. the asset is no longer offered there).
	f.state = f.resolver.Repair(f.state, FieldAsset, cat)
	return true
}

// Current returns the present state and the catalog it was validated against.
func (f *Flow) Current() (State, *catalog.Catalog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.catalog
}
