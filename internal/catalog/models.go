// Package catalog defines the provider-agnostic model the rest of the gateway
// works with, plus the normalizers that map the upstream's wire shapes into
// it. Handlers and the resolver never see raw upstream JSON.
package catalog

// Direction distinguishes the buy (fiat→crypto) and sell (crypto→fiat) wire
// shapes. The payloads differ only in JSON key names.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool { return d == Buy || d == Sell }

// Limit is a payment-method amount bound in one fiat currency. Amounts stay
// strings end to end; this service never does arithmetic on them.
type Limit struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// Network is a blockchain network an asset can settle on.
type Network struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Asset is a tradable crypto asset.
type Asset struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Networks []Network `json:"networks"`
}

// PaymentMethod aggregates one cashout/payment rail across currencies; Limits
// is keyed by fiat currency code.
type PaymentMethod struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Limits map[string]Limit `json:"per_currency_limits"`
}

// FiatCurrency is a supported fiat currency and the rails it settles over.
type FiatCurrency struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	PaymentMethods []string `json:"payment_methods"`
}

// Country is a supported jurisdiction. Subdivisions is populated only where
// the upstream requires one (US states).
type Country struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	PaymentMethods []string `json:"payment_methods"`
	Subdivisions   []string `json:"subdivisions,omitempty"`
}

// Catalog is the normalized result of a config or options lookup. Config
// lookups populate Countries; options lookups populate the rest. Every code
// and ID is unique within its collection.
type Catalog struct {
	Countries      []Country       `json:"countries,omitempty"`
	Assets         []Asset         `json:"assets,omitempty"`
	FiatCurrencies []FiatCurrency  `json:"fiat_currencies,omitempty"`
	PaymentMethods []PaymentMethod `json:"payment_methods,omitempty"`
}

// Asset returns the asset with the given code, if present.
func (c *Catalog) Asset(code string) (Asset, bool) {
	for _, a := range c.Assets {
		if a.Code == code {
			return a, true
		}
	}
	return Asset{}, false
}

// Country returns the country with the given code, if present.
func (c *Catalog) Country(code string) (Country, bool) {
	for _, co := range c.Countries {
		if co.Code == code {
			return co, true
		}
	}
	return Country{}, false
}

// HasFiat reports whether the catalog lists the fiat currency code.
func (c *Catalog) HasFiat(code string) bool {
	for _, f := range c.FiatCurrencies {
		if f.Code == code {
			return true
		}
	}
	return false
}

// HasPaymentMethod reports whether the catalog lists the payment method ID.
func (c *Catalog) HasPaymentMethod(id string) bool {
	for _, p := range c.PaymentMethods {
		if p.ID == id {
			return true
		}
	}
	return false
}

// USSubdivisions is the fixed set of region codes a US selection must use:
// the 50 states plus DC.
var USSubdivisions = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL",
	"GA", "HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME",
	"MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH",
	"NJ", "NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI",
	"SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI",
	"WY",
}

// IsUSSubdivision reports whether code is one of the fixed US region codes.
func IsUSSubdivision(code string) bool {
	for _, s := range USSubdivisions {
		if s == code {
			return true
		}
	}
	return false
}
