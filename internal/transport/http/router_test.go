package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigportal/internal/gateway"
	"sigportal/internal/portal"
	"sigportal/internal/proxy"
	"sigportal/internal/registry"
)

type noopLookup struct{}

func (noopLookup) LookupClient(context.Context, gateway.LookupRequest) gateway.LookupResult {
	return gateway.Success(map[string]any{})
}

type noopStatus struct{}

func (noopStatus) Current() gateway.Status { return gateway.Status{Status: gateway.StatusUnknown} }
func (noopStatus) Refresh(context.Context) gateway.Status {
	return gateway.Status{Status: gateway.StatusUnknown}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg, err := registry.New(registry.Defaults())
	require.NoError(t, err)

	portalHandler := portal.NewHandler(noopLookup{}, noopStatus{}, reg, log, nil)
	proxyHandler := proxy.NewHandler(gateway.DirectEndpoints("http://unused.invalid"), nil, log, nil)

	staticFS := fstest.MapFS{
		"index.html": {Data: []byte("<html><body>portal shell</body></html>")},
		"app.css":    {Data: []byte("body{}")},
	}
	return NewRouter(portalHandler, proxyHandler, staticFS, log)
}

func TestRouterServesIndexAtRoot(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal shell")
}

func TestRouterFallsBackToIndexForUnknownGET(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/some/client/route", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal shell")
}

func TestRouterServesStaticAssets(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/app.css", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterRejectsWrongContentTypeOnAPI(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/check-client", nil)
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
