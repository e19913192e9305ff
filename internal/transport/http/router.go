// Package httptransport assembles the portal's HTTP surface: the browser
// JSON API, the upstream relay, the metrics endpoint, and the static UI
// shell.
package httptransport

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sigportal/internal/platform/middleware"
	"sigportal/internal/portal"
	"sigportal/internal/proxy"
)

// NewRouter wires all routes with the shared middleware stack. The static
// filesystem serves the UI shell; unmatched GET paths fall back to it so the
// single-page client owns its own routing.
func NewRouter(portalHandler *portal.Handler, proxyHandler *proxy.Handler, staticFS fs.FS, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientInfo)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		// The portal lookup can spend 30s upstream plus retries and backoff.
		r.Use(middleware.Timeout(2 * time.Minute))
		portalHandler.Routes(r)
		proxyHandler.Routes(r)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	fileServer := http.FileServer(http.FS(staticFS))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		serveIndex(w, r, staticFS)
	})

	return r
}

// serveIndex hands unmatched GETs the UI shell. Asset requests that exist in
// the static tree are served as-is first.
func serveIndex(w http.ResponseWriter, r *http.Request, staticFS fs.FS) {
	path := r.URL.Path
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	if path != "" {
		if f, err := staticFS.Open(path); err == nil {
			f.Close()
			http.FileServer(http.FS(staticFS)).ServeHTTP(w, r)
			return
		}
	}

	index, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(index)
}
