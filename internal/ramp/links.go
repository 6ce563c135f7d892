package ramp

import (
	"fmt"
	"net/url"

	"rampgw/internal/catalog"
)

// LinkBuilder turns a quote and a one-time session token into the hosted
// checkout redirect URL. The checkout page itself is an external collaborator;
// the gateway only hands the user off to it.
type LinkBuilder struct {
	base *url.URL
}

// NewLinkBuilder parses the hosted checkout base URL once at startup.
func NewLinkBuilder(baseURL string) (*LinkBuilder, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse checkout base URL: %w", err)
	}
	return &LinkBuilder{base: u}, nil
}

// Build renders the redirect URL for one transaction. The quote ID pins the
// pricing the user saw; the session token scopes the checkout to the wallet
// it was issued for.
func (b *LinkBuilder) Build(direction catalog.Direction, quoteID, sessionToken string) string {
	u := b.base.JoinPath(string(direction), "input")

	q := url.Values{}
	q.Set("quoteId", quoteID)
	q.Set("sessionToken", sessionToken)
	u.RawQuery = q.Encode()
	return u.String()
}
