package selection

import (
	"rampgw/internal/catalog"
)

// Resolver repairs selection states against the static compatibility table
// and, when available, the latest normalized catalog. Repair is pure and
// idempotent: repairing an already-consistent state is a no-op.
type Resolver struct {
	table Table
}

// NewResolver builds a Resolver over the given table.
func NewResolver(table Table) *Resolver {
	return &Resolver{table: table}
}

// Table exposes the static table for callers assembling available choices.
func (r *Resolver) Table() Table {
	return r.table
}

// Repair returns a corrected copy of s after a change to the given field.
// cat is the latest options catalog for the selected jurisdiction; nil means
// none has arrived yet (startup, offline fallback), in which case the static
// table alone governs.
func (r *Resolver) Repair(s State, changed Field, cat *catalog.Catalog) State {
	switch changed {
	case FieldCountry:
		if s.Country == "US" {
			if !catalog.IsUSSubdivision(s.Subdivision) {
				s.Subdivision = DefaultUSSubdivision
			}
		} else {
			s.Subdivision = ""
		}
	case FieldSubdivision:
		if s.Country == "US" && !catalog.IsUSSubdivision(s.Subdivision) {
			s.Subdivision = DefaultUSSubdivision
		}
		if s.Country != "US" {
			s.Subdivision = ""
		}
	case FieldAsset:
		// An asset the table doesn't know has no static networks to fall
		// back on; the network stays unresolved until an options fetch
		// reports what the asset actually settles on.
		if !r.table.Knows(s.Asset) {
			if cat == nil {
				s.Network = ""
			} else if _, ok := cat.Asset(s.Asset); !ok {
				s.Network = ""
			}
		}
	case FieldNetwork:
		// A direct network change may only land on a compatible network;
		// anything else is repaired back immediately.
		s.Network = r.repairNetwork(s, cat)
	}

	// Invariants enforced regardless of which field moved. Order matters:
	// the asset must be settled before the network derived from it.
	s = r.repairAsset(s, cat)
	s.Network = r.repairNetwork(s, cat)
	s.FiatCurrency = repairFiat(s.FiatCurrency, cat)
	s.PaymentMethod = repairPaymentMethod(s.PaymentMethod, cat)
	if s.Country == "US" && !catalog.IsUSSubdivision(s.Subdivision) {
		s.Subdivision = DefaultUSSubdivision
	}
	return s
}

// repairAsset swaps an asset the latest catalog no longer offers for the
// first one it does; the network is re-derived afterwards from the new
// asset's own compatibility data.
func (r *Resolver) repairAsset(s State, cat *catalog.Catalog) State {
	if cat == nil || len(cat.Assets) == 0 {
		return s
	}
	if _, ok := cat.Asset(s.Asset); ok {
		return s
	}
	s.Asset = cat.Assets[0].Code
	s.Network = "" // force re-derivation below
	return s
}

// repairNetwork returns a network valid for s.Asset. The static table is the
// validation source of truth for assets it knows; for assets it doesn't, the
// latest catalog's reported networks govern, and with neither the network
// stays unresolved until an options fetch arrives.
func (r *Resolver) repairNetwork(s State, cat *catalog.Catalog) string {
	if r.table.Knows(s.Asset) {
		if r.table.Compatible(s.Asset, s.Network) {
			return s.Network
		}
		first, _ := r.table.First(s.Asset)
		return first
	}

	if cat != nil {
		if asset, ok := cat.Asset(s.Asset); ok {
			for _, n := range asset.Networks {
				if n.ID == s.Network {
					return s.Network
				}
			}
			if len(asset.Networks) > 0 {
				return asset.Networks[0].ID
			}
			// The catalog offers the asset but reports nowhere for it to
			// settle; a carried-over network would be a lie.
			return ""
		}
	}
	return s.Network
}

func repairFiat(code string, cat *catalog.Catalog) string {
	if cat == nil || len(cat.FiatCurrencies) == 0 || cat.HasFiat(code) {
		return code
	}
	if cat.HasFiat(PreferredFiat) {
		return PreferredFiat
	}
	return cat.FiatCurrencies[0].Code
}

func repairPaymentMethod(id string, cat *catalog.Catalog) string {
	if cat == nil || len(cat.PaymentMethods) == 0 || cat.HasPaymentMethod(id) {
		return id
	}
	if cat.HasPaymentMethod(PreferredMethod) {
		return PreferredMethod
	}
	return cat.PaymentMethods[0].ID
}
