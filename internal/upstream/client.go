// Package upstream performs authenticated calls against the third-party
// financial API and classifies every failure mode. It deliberately does not
// retry: the callers that could retry safely (config/options) degrade through
// the cache instead, and retrying a quote or session POST could duplicate a
// financial side effect upstream.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rampgw/internal/platform/metrics"
	"rampgw/internal/signer"
)

// Client issues signed requests to the upstream API.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	signer  *signer.Signer
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client; tests inject a transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics attaches the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a Client. timeout bounds each round trip; a hung upstream call
// must never block the UI indefinitely.
func New(baseURL string, s *signer.Signer, timeout time.Duration, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base URL: %w", err)
	}
	c := &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: u,
		signer:  s,
		logger:  logger,
		tracer:  otel.Tracer("rampgw/upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do issues one signed request and returns the raw body of a 2xx response.
// A fresh token is minted per call, bound to exactly (method, path); query
// parameters ride on the URL but never enter the signed material.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "upstream "+path,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	token, err := c.signer.Sign(method, path)
	if err != nil {
		if c.metrics != nil && errors.Is(err, signer.ErrSigning) {
			c.metrics.SigningFailures.Inc()
		}
		return nil, err
	}

	u := *c.baseURL
	u.Path = path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(path, "transport_error", start)
		span.RecordError(err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// Read the full body before classifying; partial reads would turn a
	// perfectly good error detail into a second transport failure.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(path, "transport_error", start)
		span.RecordError(err)
		return nil, &TransportError{Err: err}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.observe(path, "auth_failed", start)
		if c.metrics != nil {
			c.metrics.AuthFailures.Inc()
		}
		c.logger.ErrorContext(ctx, "upstream rejected credentials",
			"path", path,
			"status", resp.StatusCode,
		)
		return nil, &AuthError{Status: resp.StatusCode, Detail: truncate(raw)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.observe(path, "rejected", start)
		return nil, &RejectedError{Status: resp.StatusCode, Detail: truncate(raw)}
	}

	c.observe(path, "ok", start)
	return raw, nil
}

// DoJSON is Do plus decoding. An unparseable 2xx body is a ProtocolError,
// never a success.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.WarnContext(ctx, "unparseable upstream response",
			"path", path,
			"error", err.Error(),
		)
		return &ProtocolError{Err: err}
	}
	return nil
}

func (c *Client) observe(path, outcome string, start time.Time) {
	c.metrics.ObserveUpstream(path, outcome, time.Since(start))
}

// truncate bounds upstream error detail; some 5xx pages are entire HTML docs.
func truncate(raw []byte) string {
	const max = 512
	if len(raw) > max {
		return string(raw[:max])
	}
	return string(raw)
}
