// Package handler exposes the gateway operations over HTTP for the hosting
// UI. Responses carry the normalized catalog model, never raw upstream JSON.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"rampgw/internal/catalog"
	"rampgw/internal/platform/metrics"
	"rampgw/internal/platform/middleware"
	"rampgw/internal/ramp"
	"rampgw/internal/selection"
	dErrors "rampgw/pkg/domain-errors"
)

// Service is the gateway operation surface the handler needs.
type Service interface {
	Config(ctx context.Context, direction catalog.Direction) *catalog.Catalog
	Options(ctx context.Context, direction catalog.Direction, country, subdivision string) *catalog.Catalog
	Bootstrap(ctx context.Context, direction catalog.Direction, country, subdivision string) ramp.Bundle
	Quote(ctx context.Context, direction catalog.Direction, req ramp.QuoteRequest) (ramp.Quote, error)
	SessionToken(ctx context.Context, req ramp.SessionRequest) (ramp.SessionToken, error)
	CheckoutLink(ctx context.Context, direction catalog.Direction, req ramp.CheckoutRequest) (ramp.CheckoutLink, error)
	CreateFlow(ctx context.Context, direction catalog.Direction, country string) ramp.FlowView
	UpdateSelection(ctx context.Context, flowID string, field selection.Field, value string) (ramp.FlowView, error)
	Flow(flowID string) (ramp.FlowView, error)
}

// Handler routes the public gateway endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Handler.
func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: m}
}

// Register mounts the gateway routes with the standard middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))

	router.Get("/{direction}/config", h.handleConfig)
	router.Get("/{direction}/options", h.handleOptions)
	router.Get("/{direction}/bootstrap", h.handleBootstrap)
	router.Post("/{direction}/quote", h.handleQuote)
	router.Post("/{direction}/checkout", h.handleCheckout)
	router.Post("/session", h.handleSession)
	router.Post("/flows", h.handleCreateFlow)
	router.Get("/flows/{flowID}", h.handleGetFlow)
	router.Post("/flows/{flowID}/selection", h.handleUpdateSelection)

	r.Mount("/ramp/v1", router)
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	direction, ok := h.direction(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Config(r.Context(), direction))
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	direction, ok := h.direction(w, r)
	if !ok {
		return
	}
	country := r.URL.Query().Get("country")
	if !govalidator.IsISO3166Alpha2(country) {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "country must be an ISO 3166-1 alpha-2 code"))
		return
	}
	subdivision := r.URL.Query().Get("subdivision")
	writeJSON(w, http.StatusOK, h.service.Options(r.Context(), direction, country, subdivision))
}

func (h *Handler) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	direction, ok := h.direction(w, r)
	if !ok {
		return
	}
	country := r.URL.Query().Get("country")
	if !govalidator.IsISO3166Alpha2(country) {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "country must be an ISO 3166-1 alpha-2 code"))
		return
	}
	subdivision := r.URL.Query().Get("subdivision")
	writeJSON(w, http.StatusOK, h.service.Bootstrap(r.Context(), direction, country, subdivision))
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	direction, ok := h.direction(w, r)
	if !ok {
		return
	}

	var req ramp.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateQuote(req); err != nil {
		writeError(w, err)
		return
	}

	quote, err := h.service.Quote(ctx, direction, req)
	if err != nil {
		h.logFailure(ctx, "quote failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quote)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	direction, ok := h.direction(w, r)
	if !ok {
		return
	}

	var req ramp.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateQuote(req.QuoteRequest); err != nil {
		writeError(w, err)
		return
	}
	if req.WalletAddress == "" {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "wallet_address is required"))
		return
	}

	link, err := h.service.CheckoutLink(ctx, direction, req)
	if err != nil {
		h.logFailure(ctx, "checkout link failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ramp.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.WalletAddress == "" {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "wallet_address is required"))
		return
	}
	if len(req.Networks) == 0 {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "at least one network is required"))
		return
	}

	token, err := h.service.SessionToken(ctx, req)
	if err != nil {
		h.logFailure(ctx, "session token failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

type createFlowRequest struct {
	Direction string `json:"direction"`
	Country   string `json:"country"`
}

func (h *Handler) handleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var req createFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	direction := catalog.Direction(req.Direction)
	if !direction.Valid() {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "direction must be buy or sell"))
		return
	}
	if !govalidator.IsISO3166Alpha2(req.Country) {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "country must be an ISO 3166-1 alpha-2 code"))
		return
	}
	writeJSON(w, http.StatusCreated, h.service.CreateFlow(r.Context(), direction, req.Country))
}

type updateSelectionRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) handleUpdateSelection(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req updateSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	field := selection.Field(req.Field)
	if !field.Valid() {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "unknown selection field"))
		return
	}

	view, err := h.service.UpdateSelection(r.Context(), flowID, field, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Flow(chi.URLParam(r, "flowID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// direction parses and validates the direction path segment.
func (h *Handler) direction(w http.ResponseWriter, r *http.Request) (catalog.Direction, bool) {
	d := catalog.Direction(chi.URLParam(r, "direction"))
	if !d.Valid() {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "direction must be buy or sell"))
		return "", false
	}
	return d, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

func validateQuote(req ramp.QuoteRequest) error {
	switch {
	case req.Asset == "":
		return dErrors.New(dErrors.CodeBadRequest, "asset is required")
	case req.Network == "":
		return dErrors.New(dErrors.CodeBadRequest, "network is required")
	case !govalidator.IsFloat(req.Amount):
		return dErrors.New(dErrors.CodeBadRequest, "amount must be a decimal number")
	case req.FiatCurrency == "":
		return dErrors.New(dErrors.CodeBadRequest, "fiat_currency is required")
	case req.PaymentMethod == "":
		return dErrors.New(dErrors.CodeBadRequest, "payment_method is required")
	case !govalidator.IsISO3166Alpha2(req.Country):
		return dErrors.New(dErrors.CodeBadRequest, "country must be an ISO 3166-1 alpha-2 code")
	}
	return nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Detail
	}
	writeJSON(w, dErrors.ToHTTPStatus(code), errorResponse{Error: errorBody{Code: string(code), Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
