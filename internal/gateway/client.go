// Package gateway is the normalization and retry layer over the
// SwitchTransact workflow API. It turns the loosely-typed upstream responses
// into the LookupResult/Status taxonomy and hides transient network failures
// behind a bounded linear-backoff retry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sigportal/internal/platform/metrics"
	"sigportal/internal/registry"
)

// Doer is the minimal interface needed from an HTTP client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the gateway's timing and retry parameters.
type Config struct {
	Endpoints Endpoints

	// LookupTimeout bounds a single lookup attempt.
	LookupTimeout time.Duration
	// ProbeTimeout bounds a single status probe attempt.
	ProbeTimeout time.Duration

	// MaxRetries is the number of additional attempts after the first, spent
	// only on transport-level failures. A received HTTP status is final.
	MaxRetries int
	// RetryDelay is the linear backoff base: attempt n waits n*RetryDelay.
	RetryDelay time.Duration
}

// DefaultConfig mirrors the upstream client's production parameters.
func DefaultConfig(endpoints Endpoints) Config {
	return Config{
		Endpoints:     endpoints,
		LookupTimeout: 30 * time.Second,
		ProbeTimeout:  10 * time.Second,
		MaxRetries:    2,
		RetryDelay:    time.Second,
	}
}

// Client issues the two upstream operations for whichever product is
// currently selected in the registry.
type Client struct {
	cfg      Config
	products *registry.Registry
	http     Doer
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures the Client.
type Option func(*Client)

// WithDoer sets a custom HTTP client (for testing and mock-data mode).
func WithDoer(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer allows injecting a custom OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// New creates a gateway client. The registry's current product supplies the
// credential for every call.
func New(cfg Config, products *registry.Registry, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		products: products,
		http:     &http.Client{},
		logger:   logger,
		tracer:   otel.Tracer("sigportal/gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProbeStatus checks upstream availability with a lightweight reference
// lookup. It never fails: every outcome is folded into a Status value.
func (c *Client) ProbeStatus(ctx context.Context) Status {
	product := c.products.Current()

	ctx, span := c.tracer.Start(ctx, "gateway.probe_status",
		trace.WithAttributes(attribute.String("product.id", product.ID)))
	defer span.End()

	if !product.Configured() {
		c.metrics.RecordStatusProbe(string(StatusError))
		return statusNow(StatusError, fmt.Sprintf("API key for %s is not configured", product.Name))
	}

	resp, _, err := c.send(ctx, "probe", http.MethodGet, c.cfg.Endpoints.Probe, nil, product)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.RecordStatusProbe(string(StatusError))
		c.logger.WarnContext(ctx, "status probe failed", "product", product.ID, "error", err)
		return statusNow(StatusError, probeFailureMessage(err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.metrics.RecordStatusProbe(string(StatusOK))
		return statusNow(StatusOK, "API is responding normally")
	}

	c.metrics.RecordStatusProbe(string(StatusError))
	return statusNow(StatusError, fmt.Sprintf("API returned status %d", resp.StatusCode))
}

// LookupClient runs a person-detail query for the current product and
// reconciles whatever shape the upstream answers with into a LookupResult.
func (c *Client) LookupClient(ctx context.Context, req LookupRequest) LookupResult {
	product := c.products.Current()

	ctx, span := c.tracer.Start(ctx, "gateway.lookup_client",
		trace.WithAttributes(attribute.String("product.id", product.ID)))
	defer span.End()

	if !product.Configured() {
		return Failure(ErrorConfig, fmt.Sprintf("API key for %s is not configured", product.Name))
	}

	payload, err := json.Marshal(req)
	if err != nil {
		// LookupRequest is plain data; marshal cannot realistically fail.
		return Failure(ErrorParse, "failed to encode request")
	}

	resp, body, err := c.send(ctx, "lookup", http.MethodPost, c.cfg.Endpoints.Details, payload, product)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.WarnContext(ctx, "lookup failed", "product", product.ID, "error", err)
		return transportFailure(err)
	}

	result := Normalize(resp.StatusCode, body)
	span.SetAttributes(
		attribute.Int("upstream.status", resp.StatusCode),
		attribute.String("lookup.kind", string(result.Kind)),
	)
	return result
}

// send performs one upstream operation with the bounded retry loop. Only
// transport failures consume retry budget; any received response is returned
// to the caller as final. The response body is fully read before returning.
func (c *Client) send(ctx context.Context, operation, method, url string, payload []byte, product registry.Product) (*http.Response, []byte, error) {
	timeout := c.cfg.LookupTimeout
	if operation == "probe" {
		timeout = c.cfg.ProbeTimeout
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.RecordUpstreamRetry(operation)
			c.logger.InfoContext(ctx, "retrying upstream request",
				"operation", operation,
				"attempt", attempt,
				"max_retries", c.cfg.MaxRetries,
			)
			// Linear backoff: attempt index times the base delay.
			select {
			case <-ctx.Done():
				return nil, nil, NewUpstreamError(ErrorTimeout, product.ID, "Request timed out", ctx.Err())
			case <-time.After(time.Duration(attempt) * c.cfg.RetryDelay):
			}
		}

		resp, body, err := c.attempt(ctx, method, url, payload, product, timeout, operation)
		if err == nil {
			return resp, body, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, nil, err
		}
		if ctx.Err() != nil {
			// Parent context is gone; further attempts cannot succeed.
			return nil, nil, err
		}
	}
	return nil, nil, lastErr
}

// attempt issues a single HTTP request under its own deadline.
func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, product registry.Product, timeout time.Duration, operation string) (*http.Response, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, bodyReader)
	if err != nil {
		return nil, nil, NewUpstreamError(ErrorParse, product.ID, "failed to create request", err)
	}
	// The upstream expects the raw credential, no scheme prefix.
	req.Header.Set("Authorization", product.Credential)
	req.Header.Set("Content-Type", "application/json")

	c.metrics.RecordUpstreamAttempt(operation)
	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveUpstreamLatency(operation, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, nil, NewUpstreamError(ErrorTimeout, product.ID,
				fmt.Sprintf("Request timed out after %s", timeout), err)
		}
		return nil, nil, NewUpstreamError(ErrorTransport, product.ID, "failed to reach API", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, NewUpstreamError(ErrorTransport, product.ID, "failed to read response", err)
	}
	return resp, body, nil
}

// transportFailure converts an exhausted-retries error into the result
// union, keeping timeouts distinguishable from other transport failures.
func transportFailure(err error) LookupResult {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return Failure(ue.Category, ue.Message)
	}
	return Failure(ErrorTransport, "Error connecting to API")
}

func probeFailureMessage(err error) string {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return err.Error()
}
