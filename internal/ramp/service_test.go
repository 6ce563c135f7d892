package ramp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rampgw/internal/catalog"
	"rampgw/internal/catalog/cache"
	"rampgw/internal/selection"
	"rampgw/internal/upstream"
	"rampgw/pkg/audit"
	dErrors "rampgw/pkg/domain-errors"
)

type apiCall struct {
	method string
	path   string
	query  url.Values
	body   any
}

// fakeAPI replays canned JSON per call and records everything it was asked.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []apiCall
	respond func(method, path string, query url.Values, body any) (string, error)
}

func (f *fakeAPI) DoJSON(_ context.Context, method, path string, query url.Values, body, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, path: path, query: query, body: body})
	f.mu.Unlock()

	raw, err := f.respond(method, path, query, body)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) lastCall() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

const sellOptionsJSON = `{
	"sell_currencies": [
		{"id": "a1", "name": "USD Coin", "symbol": "USDC", "networks": [
			{"name": "base", "display_name": "Base"},
			{"name": "ethereum", "display_name": "Ethereum"}
		]},
		{"id": "a2", "name": "Ethereum", "symbol": "ETH", "networks": [
			{"name": "base", "display_name": "Base"}
		]}
	],
	"cash_out_currencies": [
		{"id": "USD", "name": "US Dollar", "limits": [
			{"id": "ACH_BANK_ACCOUNT", "min": "10.00", "max": "25000.00"}
		]}
	]
}`

const sellQuoteJSON = `{
	"quote_id": "q-123",
	"cashout_total": {"value": "97.50", "currency": "USD"},
	"cashout_subtotal": {"value": "100.00", "currency": "USD"},
	"sell_amount": {"value": "100", "currency": "USDC"},
	"coinbase_fee": {"value": "2.50", "currency": "USD"}
}`

const sessionJSON = `{"token": "tok-1", "channel_id": "ch-1"}`

type ServiceSuite struct {
	suite.Suite
	ctx    context.Context
	now    time.Time
	api    *fakeAPI
	audits *audit.MemoryStore
	svc    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	s.api = &fakeAPI{respond: func(_, path string, _ url.Values, _ any) (string, error) {
		switch path {
		case "/onramp/v1/sell/options", "/onramp/v1/buy/options":
			return sellOptionsJSON, nil
		case "/onramp/v1/sell/quote", "/onramp/v1/buy/quote":
			return sellQuoteJSON, nil
		case "/onramp/v1/token":
			return sessionJSON, nil
		default:
			return `{"countries": [{"id": "US", "subdivisions": ["CA", "NY"], "payment_methods": [{"id": "ACH_BANK_ACCOUNT"}]}]}`, nil
		}
	}}
	s.audits = audit.NewMemoryStore()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return s.now }
	c := cache.New(cache.NewMemoryStore(), time.Minute, logger, cache.WithClock(clock))
	normalizer := catalog.NewNormalizer(catalog.DefaultDisplayNames(), logger, nil)
	links, err := NewLinkBuilder("https://pay.example.com/v3")
	s.Require().NoError(err)

	s.svc = NewService(s.api, normalizer, c, selection.NewResolver(selection.DefaultTable()), links, logger,
		WithAudit(s.audits),
		WithClock(clock),
	)
}

func (s *ServiceSuite) TestQuoteSellWireShape() {
	quote, err := s.svc.Quote(s.ctx, catalog.Sell, QuoteRequest{
		Asset:         "USDC",
		Network:       "base",
		Amount:        "100",
		FiatCurrency:  "USD",
		PaymentMethod: "ACH_BANK_ACCOUNT",
		Country:       "US",
		Subdivision:   "CA",
	})
	s.Require().NoError(err)

	s.Equal("q-123", quote.ID)
	s.Equal(Money{Value: "97.50", Currency: "USD"}, quote.Total)
	s.Equal(Money{Value: "100", Currency: "USDC"}, quote.AssetAmount)
	s.Equal(Money{Value: "2.50", Currency: "USD"}, quote.ProviderFee)

	call := s.api.lastCall()
	s.Equal("POST", call.method)
	s.Equal("/onramp/v1/sell/quote", call.path)
	body := call.body.(map[string]any)
	s.Equal("USDC", body["sell_currency"])
	s.Equal("base", body["sell_network"])
	s.Equal("100", body["sell_amount"])
	s.Equal("USD", body["cashout_currency"])
	s.Equal("CA", body["subdivision"])
	s.NotContains(body, "purchase_currency")
}

func (s *ServiceSuite) TestQuoteBuyWireShape() {
	_, err := s.svc.Quote(s.ctx, catalog.Buy, QuoteRequest{
		Asset:         "ETH",
		Network:       "base",
		Amount:        "50.00",
		FiatCurrency:  "USD",
		PaymentMethod: "CARD",
		Country:       "US",
	})
	s.Require().NoError(err)

	body := s.api.lastCall().body.(map[string]any)
	s.Equal("ETH", body["purchase_currency"])
	s.Equal("50.00", body["payment_amount"])
	s.Equal("USD", body["payment_currency"])
	s.NotContains(body, "sell_currency")
	s.NotContains(body, "subdivision")
}

func (s *ServiceSuite) TestQuoteRejectionSurfacesDetail() {
	s.api.respond = func(string, string, url.Values, any) (string, error) {
		return "", &upstream.RejectedError{Status: 400, Detail: "sell_amount below minimum"}
	}

	_, err := s.svc.Quote(s.ctx, catalog.Sell, QuoteRequest{Asset: "USDC"})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeRejected))

	var de *dErrors.Error
	s.Require().ErrorAs(err, &de)
	s.Equal("sell_amount below minimum", de.Detail)
	s.Empty(s.audits.Events(), "a failed quote is not audited")
}

func (s *ServiceSuite) TestQuoteAuthFailureSurfaces() {
	s.api.respond = func(string, string, url.Values, any) (string, error) {
		return "", &upstream.AuthError{Status: 401, Detail: "invalid token"}
	}

	_, err := s.svc.Quote(s.ctx, catalog.Sell, QuoteRequest{Asset: "USDC"})
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestQuoteWithoutIDIsUnavailable() {
	s.api.respond = func(string, string, url.Values, any) (string, error) {
		return `{"cashout_total": {"value": "1", "currency": "USD"}}`, nil
	}

	_, err := s.svc.Quote(s.ctx, catalog.Sell, QuoteRequest{Asset: "USDC"})
	s.True(dErrors.Is(err, dErrors.CodeUnavailable))
}

func (s *ServiceSuite) TestQuoteIsAudited() {
	_, err := s.svc.Quote(s.ctx, catalog.Sell, QuoteRequest{
		Asset: "USDC", Network: "base", Amount: "100", FiatCurrency: "USD", Country: "US",
	})
	s.Require().NoError(err)

	events := s.audits.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionQuoteCreated, events[0].Action)
	s.Equal("USDC", events[0].Asset)
	s.Equal("100", events[0].Amount)
	s.Equal(s.now, events[0].Timestamp)
}

func (s *ServiceSuite) TestSessionToken() {
	token, err := s.svc.SessionToken(s.ctx, SessionRequest{
		WalletAddress: "0xabc",
		Networks:      []string{"base"},
	})
	s.Require().NoError(err)
	s.Equal("tok-1", token.Token)
	s.Equal("ch-1", token.ChannelID)

	call := s.api.lastCall()
	s.Equal("/onramp/v1/token", call.path)
	body := call.body.(map[string]any)
	addresses := body["addresses"].([]map[string]any)
	s.Equal("0xabc", addresses[0]["address"])

	events := s.audits.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionSessionCreated, events[0].Action)
}

func (s *ServiceSuite) TestSessionWithoutTokenIsUnavailable() {
	s.api.respond = func(string, string, url.Values, any) (string, error) {
		return `{"channel_id": "ch-1"}`, nil
	}

	_, err := s.svc.SessionToken(s.ctx, SessionRequest{WalletAddress: "0xabc"})
	s.True(dErrors.Is(err, dErrors.CodeUnavailable))
}

func (s *ServiceSuite) TestCheckoutLink() {
	link, err := s.svc.CheckoutLink(s.ctx, catalog.Sell, CheckoutRequest{
		QuoteRequest: QuoteRequest{
			Asset: "USDC", Network: "base", Amount: "100",
			FiatCurrency: "USD", PaymentMethod: "ACH_BANK_ACCOUNT", Country: "US",
		},
		WalletAddress: "0xabc",
	})
	s.Require().NoError(err)

	u, err := url.Parse(link.URL)
	s.Require().NoError(err)
	s.Equal("pay.example.com", u.Host)
	s.Equal("/v3/sell/input", u.Path)
	s.Equal("q-123", u.Query().Get("quoteId"))
	s.Equal("tok-1", u.Query().Get("sessionToken"))
	s.Equal("q-123", link.Quote.ID)
}

func (s *ServiceSuite) TestCheckoutLinkAbortsOnSessionFailure() {
	s.api.respond = func(_, path string, _ url.Values, _ any) (string, error) {
		if path == "/onramp/v1/token" {
			return "", &upstream.TransportError{Err: io.ErrUnexpectedEOF}
		}
		return sellQuoteJSON, nil
	}

	_, err := s.svc.CheckoutLink(s.ctx, catalog.Sell, CheckoutRequest{WalletAddress: "0xabc"})
	s.True(dErrors.Is(err, dErrors.CodeUnavailable))
}

func (s *ServiceSuite) TestConfigNeverFails() {
	s.api.respond = func(string, string, url.Values, any) (string, error) {
		return "", &upstream.TransportError{Err: io.ErrUnexpectedEOF}
	}

	cat := s.svc.Config(s.ctx, catalog.Sell)
	s.Require().NotNil(cat)
	s.NotEmpty(cat.Countries, "static fallback served when upstream is down")
}

func (s *ServiceSuite) TestOptionsQueryAndMemoization() {
	cat := s.svc.Options(s.ctx, catalog.Sell, "US", "CA")
	s.Require().NotNil(cat)
	s.Len(cat.Assets, 2)

	call := s.api.lastCall()
	s.Equal("/onramp/v1/sell/options", call.path)
	s.Equal("US", call.query.Get("country"))
	s.Equal("CA", call.query.Get("subdivision"))

	before := s.api.callCount()
	s.svc.Options(s.ctx, catalog.Sell, "US", "CA")
	s.Equal(before, s.api.callCount(), "second lookup within TTL is a cache hit")
}

func (s *ServiceSuite) TestBootstrapReturnsBothCatalogs() {
	bundle := s.svc.Bootstrap(s.ctx, catalog.Sell, "US", "CA")
	s.Require().NotNil(bundle.Config)
	s.Require().NotNil(bundle.Options)
	s.NotEmpty(bundle.Config.Countries)
	s.NotEmpty(bundle.Options.Assets)
}

func (s *ServiceSuite) TestSelectionFlowLifecycle() {
	view := s.svc.CreateFlow(s.ctx, catalog.Sell, "US")
	s.Require().NotEmpty(view.ID)
	s.Equal("US", view.State.Country)
	s.Equal("CA", view.State.Subdivision)
	s.Equal("USD", view.State.FiatCurrency, "fiat filled in from the installed catalog")

	updated, err := s.svc.UpdateSelection(s.ctx, view.ID, selection.FieldAsset, "ETH")
	s.Require().NoError(err)
	s.Equal("ETH", updated.State.Asset)
	s.Equal("base", updated.State.Network, "network re-derived for the new asset")

	got, err := s.svc.Flow(view.ID)
	s.Require().NoError(err)
	s.Equal(updated.State, got.State)
}

func (s *ServiceSuite) TestIdleFlowsAreEvicted() {
	view := s.svc.CreateFlow(s.ctx, catalog.Sell, "US")

	s.now = s.now.Add(flowIdleTTL + time.Minute)
	s.svc.CreateFlow(s.ctx, catalog.Sell, "GB")

	_, err := s.svc.Flow(view.ID)
	s.True(dErrors.Is(err, dErrors.CodeNotFound), "an abandoned flow does not live forever")
}

func (s *ServiceSuite) TestUpdateSelectionUnknownFlow() {
	_, err := s.svc.UpdateSelection(s.ctx, "nope", selection.FieldAsset, "ETH")
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}
