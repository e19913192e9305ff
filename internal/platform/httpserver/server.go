// Package httpserver provides the tuned http.Server used by the portal.
package httpserver

import (
	"net/http"
	"time"
)

// New returns an http.Server with timeouts suited to a portal whose slowest
// handler is a 30 second upstream lookup plus retries.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
