package ramp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"rampgw/internal/catalog"
	"rampgw/internal/catalog/cache"
	"rampgw/internal/platform/metrics"
	"rampgw/internal/platform/middleware"
	"rampgw/internal/selection"
	"rampgw/internal/signer"
	"rampgw/internal/upstream"
	"rampgw/pkg/audit"
	dErrors "rampgw/pkg/domain-errors"
)

const basePath = "/onramp/v1"

// API is the signed upstream surface the service depends on. Satisfied by
// *upstream.Client; tests substitute a fake.
type API interface {
	DoJSON(ctx context.Context, method, path string, query url.Values, body, out any) error
}

// AuditPublisher mirrors audit events to an external sink, best-effort.
type AuditPublisher interface {
	Publish(ctx context.Context, event audit.Event)
}

// Service implements the gateway operations. Config and options lookups go
// through the resilience cache and cannot fail; quote and session calls always
// hit upstream and surface every failure, since no fallback can substitute for
// creating a financial transaction.
type Service struct {
	api        API
	normalizer *catalog.Normalizer
	cache      *cache.Cache
	resolver   *selection.Resolver
	links      *LinkBuilder
	flows      *flowStore
	logger     *slog.Logger
	metrics    *metrics.Metrics
	auditStore audit.Store
	publisher  AuditPublisher
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit attaches the audit store.
func WithAudit(store audit.Store) Option {
	return func(s *Service) { s.auditStore = store }
}

// WithPublisher attaches an audit event publisher.
func WithPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the service layer.
func NewService(
	api API,
	normalizer *catalog.Normalizer,
	c *cache.Cache,
	resolver *selection.Resolver,
	links *LinkBuilder,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		api:        api,
		normalizer: normalizer,
		cache:      c,
		resolver:   resolver,
		links:      links,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.flows = newFlowStore(s.now)
	return s
}

// Config returns the country/payment-method catalog for a direction. Never
// fails: upstream outages degrade to a cached or static catalog.
func (s *Service) Config(ctx context.Context, direction catalog.Direction) *catalog.Catalog {
	key := cache.Key{Domain: cache.DomainConfig, Direction: direction}
	return s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*catalog.Catalog, error) {
		var payload catalog.ConfigPayload
		path := fmt.Sprintf("%s/%s/config", basePath, direction)
		if err := s.api.DoJSON(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
			return nil, err
		}
		return s.normalizer.Config(&payload)
	})
}

// Options returns the asset/fiat/payment-method catalog for a direction and
// jurisdiction. Never fails, same degradation as Config.
func (s *Service) Options(ctx context.Context, direction catalog.Direction, country, subdivision string) *catalog.Catalog {
	key := cache.Key{Domain: cache.DomainOptions, Direction: direction, Country: country, Subdivision: subdivision}
	return s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*catalog.Catalog, error) {
		query := url.Values{}
		query.Set("country", country)
		if subdivision != "" {
			query.Set("subdivision", subdivision)
		}
		var payload catalog.OptionsPayload
		path := fmt.Sprintf("%s/%s/options", basePath, direction)
		if err := s.api.DoJSON(ctx, http.MethodGet, path, query, nil, &payload); err != nil {
			return nil, err
		}
		return s.normalizer.Options(direction, &payload)
	})
}

// Bootstrap fetches the config and options catalogs concurrently; the UI
// needs both to render its first screen.
func (s *Service) Bootstrap(ctx context.Context, direction catalog.Direction, country, subdivision string) Bundle {
	var bundle Bundle
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bundle.Config = s.Config(ctx, direction)
		return nil
	})
	g.Go(func() error {
		bundle.Options = s.Options(ctx, direction, country, subdivision)
		return nil
	})
	_ = g.Wait() // both branches degrade instead of failing
	return bundle
}

// Quote creates a one-shot quote upstream. Always hits upstream; every
// failure kind surfaces to the caller.
func (s *Service) Quote(ctx context.Context, direction catalog.Direction, req QuoteRequest) (Quote, error) {
	var payload quotePayload
	path := fmt.Sprintf("%s/%s/quote", basePath, direction)
	if err := s.api.DoJSON(ctx, http.MethodPost, path, nil, quoteWireRequest(direction, req), &payload); err != nil {
		return Quote{}, toDomainError(err)
	}

	quote, err := normalizeQuote(direction, &payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "unusable quote response", "error", err.Error())
		return Quote{}, toDomainError(err)
	}

	if s.metrics != nil {
		s.metrics.QuotesCreated.Inc()
	}
	s.record(ctx, audit.Event{
		Action:    audit.ActionQuoteCreated,
		Direction: string(direction),
		Country:   req.Country,
		Asset:     req.Asset,
		Network:   req.Network,
		Currency:  req.FiatCurrency,
		Amount:    req.Amount,
	})
	return quote, nil
}

// SessionToken requests a short-lived scoped token for an embedded flow.
// Always hits upstream; every failure kind surfaces to the caller.
func (s *Service) SessionToken(ctx context.Context, req SessionRequest) (SessionToken, error) {
	body := map[string]any{
		"addresses": []map[string]any{{
			"address":     req.WalletAddress,
			"blockchains": req.Networks,
		}},
	}
	if len(req.Assets) > 0 {
		body["assets"] = req.Assets
	}

	var payload sessionPayload
	if err := s.api.DoJSON(ctx, http.MethodPost, basePath+"/token", nil, body, &payload); err != nil {
		return SessionToken{}, toDomainError(err)
	}
	if payload.Token == "" {
		err := &catalog.SchemaError{Shape: "session", Reason: "response missing token"}
		s.logger.ErrorContext(ctx, "unusable session response", "error", err.Error())
		return SessionToken{}, toDomainError(err)
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
	}
	s.record(ctx, audit.Event{Action: audit.ActionSessionCreated})
	return SessionToken{Token: payload.Token, ChannelID: payload.ChannelID}, nil
}

// CheckoutLink creates the quote and the session token concurrently and
// combines them into the hosted checkout redirect URL. Either failure aborts
// the whole operation: a link with stale pricing or a dangling token is worse
// than an error.
func (s *Service) CheckoutLink(ctx context.Context, direction catalog.Direction, req CheckoutRequest) (CheckoutLink, error) {
	var (
		quote   Quote
		session SessionToken
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = s.Quote(ctx, direction, req.QuoteRequest)
		return err
	})
	g.Go(func() error {
		var err error
		session, err = s.SessionToken(ctx, SessionRequest{
			WalletAddress: req.WalletAddress,
			Networks:      []string{req.Network},
			Assets:        []string{req.Asset},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return CheckoutLink{}, err
	}

	return CheckoutLink{
		URL:     s.links.Build(direction, quote.ID, session.Token),
		Quote:   quote,
		Session: session,
	}, nil
}

// CreateFlow starts a selection flow for a direction and country, repairing
// the initial state and validating it against the live options catalog.
func (s *Service) CreateFlow(ctx context.Context, direction catalog.Direction, country string) FlowView {
	flow := selection.NewFlow(s.resolver, selection.State{Country: country})
	snap := flow.Apply(selection.FieldCountry, country)
	cat := s.Options(ctx, direction, snap.State.Country, snap.State.Subdivision)
	flow.Install(snap, cat)

	id := s.flows.add(direction, flow)
	state, installed := flow.Current()
	return FlowView{ID: id, State: state, Catalog: installed}
}

// UpdateSelection applies one field change to a flow: the repair is
// synchronous and happens before the derived options fetch, and a fetch
// result for a superseded selection is discarded rather than installed.
func (s *Service) UpdateSelection(ctx context.Context, flowID string, field selection.Field, value string) (FlowView, error) {
	entry, ok := s.flows.get(flowID)
	if !ok {
		return FlowView{}, dErrors.New(dErrors.CodeNotFound, "unknown flow")
	}

	snap := entry.flow.Apply(field, value)
	cat := s.Options(ctx, entry.direction, snap.State.Country, snap.State.Subdivision)
	if !entry.flow.Install(snap, cat) {
		s.logger.InfoContext(ctx, "discarding catalog for superseded selection",
			"flow_id", flowID, "version", snap.Version)
	}

	state, installed := entry.flow.Current()
	return FlowView{ID: flowID, State: state, Catalog: installed}, nil
}

// Flow returns the current view of a selection flow.
func (s *Service) Flow(flowID string) (FlowView, error) {
	entry, ok := s.flows.get(flowID)
	if !ok {
		return FlowView{}, dErrors.New(dErrors.CodeNotFound, "unknown flow")
	}
	state, installed := entry.flow.Current()
	return FlowView{ID: flowID, State: state, Catalog: installed}, nil
}

// record persists and mirrors an audit event; failures are logged, never
// returned, since audit must not fail the business operation.
func (s *Service) record(ctx context.Context, event audit.Event) {
	event.Timestamp = s.now()
	event.RequestID = middleware.GetRequestID(ctx)
	if s.auditStore != nil {
		if err := s.auditStore.Save(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "save audit event", "action", string(event.Action), "error", err.Error())
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, event)
	}
}

// quoteWireRequest maps the internal request onto the direction-specific wire
// field names.
func quoteWireRequest(direction catalog.Direction, req QuoteRequest) map[string]any {
	body := map[string]any{
		"payment_method": req.PaymentMethod,
		"country":        req.Country,
	}
	if req.Subdivision != "" {
		body["subdivision"] = req.Subdivision
	}
	if direction == catalog.Buy {
		body["purchase_currency"] = req.Asset
		body["purchase_network"] = req.Network
		body["payment_amount"] = req.Amount
		body["payment_currency"] = req.FiatCurrency
	} else {
		body["sell_currency"] = req.Asset
		body["sell_network"] = req.Network
		body["sell_amount"] = req.Amount
		body["cashout_currency"] = req.FiatCurrency
	}
	return body
}

func normalizeQuote(direction catalog.Direction, payload *quotePayload) (Quote, error) {
	if payload.QuoteID == "" {
		return Quote{}, &catalog.SchemaError{Shape: "quote", Reason: "response missing quote_id"}
	}
	quote := Quote{
		ID:          payload.QuoteID,
		ProviderFee: payload.CoinbaseFee,
		NetworkFee:  payload.NetworkFee,
	}
	if direction == catalog.Buy {
		quote.Total = payload.PaymentTotal
		quote.Subtotal = payload.PaymentSubtotal
		quote.AssetAmount = payload.PurchaseAmount
	} else {
		quote.Total = payload.CashoutTotal
		quote.Subtotal = payload.CashoutSubtotal
		quote.AssetAmount = payload.SellAmount
	}
	return quote, nil
}

// toDomainError maps the upstream failure taxonomy onto the codes the HTTP
// boundary renders. Rejection detail passes through: upstream's explanation
// of a malformed quote is exactly what the caller needs to see.
func toDomainError(err error) error {
	var (
		rejected  *upstream.RejectedError
		authErr   *upstream.AuthError
		transport *upstream.TransportError
		protocol  *upstream.ProtocolError
	)
	switch {
	case errors.Is(err, signer.ErrMissingCredential), errors.Is(err, signer.ErrSigning):
		return dErrors.Wrap(dErrors.CodeInternal, "cannot sign upstream request", err)
	case errors.As(err, &authErr):
		return dErrors.Wrap(dErrors.CodeUnauthorized, "upstream rejected credentials", err)
	case errors.As(err, &rejected):
		return dErrors.Wrap(dErrors.CodeRejected, rejected.Detail, err)
	case errors.As(err, &protocol), catalog.IsSchemaError(err):
		return dErrors.Wrap(dErrors.CodeUnavailable, "upstream returned an unusable response", err)
	case errors.As(err, &transport):
		return dErrors.Wrap(dErrors.CodeUnavailable, "upstream unreachable", err)
	default:
		return dErrors.Wrap(dErrors.CodeInternal, "upstream call failed", err)
	}
}
