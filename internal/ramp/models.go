// Package ramp is the service layer behind the gateway's public surface. It
// composes the signed upstream client, the normalizers, and the resilience
// cache into the four operations the UI consumes, and owns the per-session
// selection flows.
package ramp

import (
	"rampgw/internal/catalog"
	"rampgw/internal/selection"
)

// Money is an amount in a named currency. Values stay strings end to end; the
// gateway never does arithmetic on them.
type Money struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// QuoteRequest carries the full transaction parameters for a one-shot quote.
// The same shape serves both directions; Amount is fiat for buys and asset
// quantity for sells.
type QuoteRequest struct {
	Asset         string `json:"asset"`
	Network       string `json:"network"`
	Amount        string `json:"amount"`
	FiatCurrency  string `json:"fiat_currency"`
	PaymentMethod string `json:"payment_method"`
	Country       string `json:"country"`
	Subdivision   string `json:"subdivision,omitempty"`
}

// Quote is the normalized result of a quote call. Fees are itemized as
// upstream reports them; absent fees are zero-valued, not omitted rows.
type Quote struct {
	ID          string `json:"id"`
	Total       Money  `json:"total"`
	Subtotal    Money  `json:"subtotal"`
	AssetAmount Money  `json:"asset_amount"`
	ProviderFee Money  `json:"provider_fee"`
	NetworkFee  Money  `json:"network_fee"`
}

// SessionRequest asks for a short-lived scoped token for an embedded flow,
// keyed by destination wallet and the networks it accepts.
type SessionRequest struct {
	WalletAddress string   `json:"wallet_address"`
	Networks      []string `json:"networks"`
	Assets        []string `json:"assets,omitempty"`
}

// SessionToken is the one-time token the hosted checkout consumes.
type SessionToken struct {
	Token     string `json:"token"`
	ChannelID string `json:"channel_id,omitempty"`
}

// CheckoutRequest bundles everything needed to produce a redirect link in one
// round trip from the UI.
type CheckoutRequest struct {
	QuoteRequest
	WalletAddress string `json:"wallet_address"`
}

// CheckoutLink is a ready-to-redirect hosted checkout URL plus the artifacts
// it was built from.
type CheckoutLink struct {
	URL     string       `json:"url"`
	Quote   Quote        `json:"quote"`
	Session SessionToken `json:"session"`
}

// Bundle pairs the two catalogs the UI needs to render an initial screen.
type Bundle struct {
	Config  *catalog.Catalog `json:"config"`
	Options *catalog.Catalog `json:"options"`
}

// FlowView is the externally visible state of a selection flow.
type FlowView struct {
	ID      string           `json:"id"`
	State   selection.State  `json:"state"`
	Catalog *catalog.Catalog `json:"catalog,omitempty"`
}

// quotePayload is the upstream quote wire shape. Buy and sell responses carry
// different field names for the same quantities; exactly one set is populated.
type quotePayload struct {
	QuoteID string `json:"quote_id"`

	PaymentTotal    Money `json:"payment_total"`
	PaymentSubtotal Money `json:"payment_subtotal"`
	PurchaseAmount  Money `json:"purchase_amount"`

	CashoutTotal    Money `json:"cashout_total"`
	CashoutSubtotal Money `json:"cashout_subtotal"`
	SellAmount      Money `json:"sell_amount"`

	CoinbaseFee Money `json:"coinbase_fee"`
	NetworkFee  Money `json:"network_fee"`
}

// sessionPayload is the upstream session token wire shape.
type sessionPayload struct {
	Token     string `json:"token"`
	ChannelID string `json:"channel_id"`
}
