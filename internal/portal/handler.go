package portal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sigportal/internal/gateway"
	"sigportal/internal/platform/metrics"
	"sigportal/internal/platform/middleware"
	"sigportal/internal/registry"
	"sigportal/pkg/platform/httputil"
)

// Lookup is the gateway surface the portal consumes.
type Lookup interface {
	LookupClient(ctx context.Context, req gateway.LookupRequest) gateway.LookupResult
}

// StatusSource serves the cached upstream status.
type StatusSource interface {
	Current() gateway.Status
	Refresh(ctx context.Context) gateway.Status
}

// Handler serves the portal JSON API.
type Handler struct {
	lookup   Lookup
	status   StatusSource
	products *registry.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewHandler wires the portal routes to their collaborators.
func NewHandler(lookup Lookup, status StatusSource, products *registry.Registry, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{lookup: lookup, status: status, products: products, logger: logger, metrics: m}
}

// Routes registers the portal endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/check-client", h.checkClient)
	r.Get("/api/status", h.portalStatus)
	r.Get("/api/products", h.listProducts)
	r.Post("/api/products/select", h.selectProduct)
}

// checkClientResponse is the browser-facing lookup envelope. Data is present
// only on success.
type checkClientResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    *ClientView `json:"data,omitempty"`
}

func (h *Handler) checkClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CheckClientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.RecordLookup("invalid")
		return
	}

	h.logger.InfoContext(ctx, "processing client lookup",
		"id_number", maskIDNumber(req.IDNumber),
		"request_id", requestID,
	)

	result := h.lookup.LookupClient(ctx, gateway.NewLookupRequest(req.IDNumber))
	if result.Kind == gateway.ResultError {
		h.metrics.RecordLookup("error")
		h.logger.WarnContext(ctx, "client lookup failed",
			"category", string(result.Category),
			"message", result.Message,
			"request_id", requestID,
		)
		httputil.WriteJSON(w, lookupErrorStatus(result), checkClientResponse{
			Status:  "error",
			Message: result.Message,
		})
		return
	}

	if !gateway.HasRecord(result.Data) {
		h.metrics.RecordLookup("not_found")
		httputil.WriteJSON(w, http.StatusOK, checkClientResponse{
			Status:  "not_found",
			Message: "No client record found for ID: " + req.IDNumber + ".",
		})
		return
	}

	h.metrics.RecordLookup("success")
	view := BuildClientView(result.Data)
	httputil.WriteJSON(w, http.StatusOK, checkClientResponse{
		Status: "success",
		Data:   &view,
	})
}

// lookupErrorStatus maps a failed lookup to the HTTP status the browser
// client expects. Upstream 4xx codes pass through; everything else collapses
// to a gateway-side classification.
func lookupErrorStatus(result gateway.LookupResult) int {
	switch result.Category {
	case gateway.ErrorConfig:
		return http.StatusInternalServerError
	case gateway.ErrorTimeout:
		return http.StatusGatewayTimeout
	case gateway.ErrorTransport:
		return http.StatusServiceUnavailable
	case gateway.ErrorHTTP:
		if result.StatusCode >= 400 && result.StatusCode < 500 {
			return result.StatusCode
		}
		return http.StatusBadGateway
	case gateway.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) portalStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.status.Current())
}

// productView is a Product stripped of its credential. Credentials never
// leave the process through this API.
type productView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Configured  bool   `json:"configured"`
}

type productListResponse struct {
	Products []productView `json:"products"`
	Current  string        `json:"current"`
}

func toProductView(p registry.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Configured:  p.Configured(),
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products := h.products.List()
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	httputil.WriteJSON(w, http.StatusOK, productListResponse{
		Products: views,
		Current:  h.products.Current().ID,
	})
}

func (h *Handler) selectProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SelectProductRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	selected := h.products.SetCurrent(req.ID)
	h.metrics.RecordProductSwitch()
	h.logger.InfoContext(ctx, "current product switched",
		"requested", req.ID,
		"selected", selected.ID,
		"request_id", requestID,
	)

	// The new product may have a different credential; re-probe right away so
	// the status cell reflects the selection.
	status := h.status.Refresh(ctx)

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"product": toProductView(selected),
		"status":  status,
	})
}

// maskIDNumber keeps identity numbers out of the logs, retaining enough to
// correlate with support requests.
func maskIDNumber(id string) string {
	if len(id) <= 4 {
		return "****"
	}
	return id[:2] + "*********" + id[len(id)-2:]
}
