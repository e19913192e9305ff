// Package proxy is the browser-facing relay in front of the SwitchTransact
// API. The frontend cannot call the upstream directly because of CORS, so it
// posts here and the relay forwards the Authorization header and body
// verbatim, translating transport failures into stable JSON error envelopes.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sigportal/internal/gateway"
	"sigportal/internal/platform/metrics"
	"sigportal/pkg/platform/httputil"
)

const (
	relayTimeout = 15 * time.Second
	probeTimeout = 5 * time.Second
)

// Handler relays client-detail and status requests to the upstream API.
type Handler struct {
	endpoints gateway.Endpoints
	http      gateway.Doer
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewHandler creates the relay. The endpoints must point at the upstream API
// itself, not back at this relay.
func NewHandler(endpoints gateway.Endpoints, doer gateway.Doer, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if doer == nil {
		doer = &http.Client{}
	}
	return &Handler{endpoints: endpoints, http: doer, logger: logger, metrics: m}
}

// Routes registers the relay endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/client-details", h.relayClientDetails)
	r.Get("/status", h.relayStatus)
}

// relayClientDetails forwards a person-detail lookup. The caller supplies the
// credential; the relay adds nothing and strips nothing.
func (h *Handler) relayClientDetails(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get("Authorization")
	if apiKey == "" {
		h.metrics.RecordProxyRequest("client-details", "missing_key")
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorBody{
			Status:  "error",
			Message: "API key is required",
		})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.metrics.RecordProxyRequest("client-details", "bad_request")
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorBody{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), relayTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoints.Details, bytes.NewReader(body))
	if err != nil {
		h.metrics.RecordProxyRequest("client-details", "internal")
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorBody{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	req.Header.Set("Authorization", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		h.metrics.RecordProxyRequest("client-details", "no_response")
		h.logger.WarnContext(r.Context(), "relay received no upstream response", "error", err)
		httputil.WriteJSON(w, http.StatusGatewayTimeout, httputil.ErrorBody{
			Status:  "error",
			Message: "No response received from API",
		})
		return
	}
	defer resp.Body.Close()

	upstreamBody, err := io.ReadAll(resp.Body)
	if err != nil {
		h.metrics.RecordProxyRequest("client-details", "no_response")
		httputil.WriteJSON(w, http.StatusGatewayTimeout, httputil.ErrorBody{
			Status:  "error",
			Message: "No response received from API",
		})
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.metrics.RecordProxyRequest("client-details", "upstream_error")
		h.logger.WarnContext(r.Context(), "upstream rejected relayed lookup", "status", resp.StatusCode)
		httputil.WriteJSON(w, resp.StatusCode, httputil.ErrorBody{
			Status:  "error",
			Message: "API error: " + strconv.Itoa(resp.StatusCode),
			Details: detailPayload(upstreamBody),
		})
		return
	}

	h.metrics.RecordProxyRequest("client-details", "ok")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(upstreamBody)
}

// relayStatus runs the lightweight availability probe with the caller's
// credential. Any failure collapses into one generic 500 body.
func (h *Handler) relayStatus(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get("Authorization")
	if apiKey == "" {
		h.metrics.RecordProxyRequest("status", "missing_key")
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorBody{
			Status:  "error",
			Message: "API key is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoints.Probe, nil)
	if err != nil {
		h.writeStatusFailure(w, r, err)
		return
	}
	req.Header.Set("Authorization", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.http.Do(req)
	if err != nil {
		h.writeStatusFailure(w, r, err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.writeStatusFailure(w, r, nil)
		return
	}

	h.metrics.RecordProxyRequest("status", "ok")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "API is responding normally",
	})
}

func (h *Handler) writeStatusFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.RecordProxyRequest("status", "error")
	if err != nil {
		h.logger.WarnContext(r.Context(), "relayed status probe failed", "error", err)
	}
	httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorBody{
		Status:  "error",
		Message: "API status check failed",
	})
}

// detailPayload keeps the upstream error body intact for the caller: parsed
// when it is JSON, the raw text otherwise.
func detailPayload(body []byte) any {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		return parsed
	}
	return string(body)
}
