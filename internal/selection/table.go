package selection

import (
	"encoding/json"
	"fmt"
	"os"
)

// Table is the static asset → ordered compatible network IDs mapping. It is
// read-only after startup and remains the source of truth for validating a
// selection whenever a live options catalog hasn't arrived yet.
type Table map[string][]string

// Preferred defaults applied when a selection must be repaired to something.
const (
	DefaultUSSubdivision = "CA"
	PreferredFiat        = "USD"
	PreferredMethod      = "ACH_BANK_ACCOUNT"
)

// DefaultTable returns the compatibility table as shipped.
func DefaultTable() Table {
	return Table{
		"USDC": {"base", "ethereum", "polygon"},
		"ETH":  {"base", "ethereum"},
		"BTC":  {"bitcoin"},
		"SOL":  {"solana"},
		"LTC":  {"litecoin"},
	}
}

// LoadTable returns the default table merged with overrides from path, if
// any, so upstream network growth needs no code change.
func LoadTable(path string) (Table, error) {
	table := DefaultTable()
	if path == "" {
		return table, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compatibility table: %w", err)
	}
	var overrides Table
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse compatibility table: %w", err)
	}
	for asset, networks := range overrides {
		table[asset] = networks
	}
	return table, nil
}

// Compatible reports whether network may carry asset. Unknown assets are not
// validated by the table; the live catalog governs those.
func (t Table) Compatible(asset, network string) bool {
	networks, ok := t[asset]
	if !ok {
		return false
	}
	for _, n := range networks {
		if n == network {
			return true
		}
	}
	return false
}

// First returns the first (preferred) network for asset, if the asset is
// known.
func (t Table) First(asset string) (string, bool) {
	networks, ok := t[asset]
	if !ok || len(networks) == 0 {
		return "", false
	}
	return networks[0], true
}

// Knows reports whether the table has an entry for asset.
func (t Table) Knows(asset string) bool {
	_, ok := t[asset]
	return ok
}
