package config

import (
	"os"
	"time"
)

// Server captures process-level configuration for the portal.
type Server struct {
	Addr string

	// UpstreamBaseURL is the SwitchTransact API root, e.g.
	// https://app.switchtransact.com/api/1.0
	UpstreamBaseURL string

	// ProxyBaseURL, when set, routes gateway calls through the local relay
	// instead of hitting the upstream API directly.
	ProxyBaseURL string

	// DefaultAPIKey overrides the default product's credential. Products
	// without a credential fail fast with a "not configured" error.
	DefaultAPIKey string

	// ProductsFile optionally points at a YAML file overriding the built-in
	// product definitions.
	ProductsFile string

	// UseMockData swaps the upstream transport for a canned demo record.
	// Test/demo switch, not a parallel code path.
	UseMockData bool

	StatusInterval time.Duration
}

// DefaultUpstreamBaseURL is the production SwitchTransact endpoint root.
const DefaultUpstreamBaseURL = "https://app.switchtransact.com/api/1.0"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PORTAL_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	base := os.Getenv("SWITCHTRANSACT_BASE_URL")
	if base == "" {
		base = DefaultUpstreamBaseURL
	}

	interval := time.Minute
	if s := os.Getenv("PORTAL_STATUS_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			interval = d
		}
	}

	return Server{
		Addr:            addr,
		UpstreamBaseURL: base,
		ProxyBaseURL:    os.Getenv("PORTAL_PROXY_BASE_URL"),
		DefaultAPIKey:   os.Getenv("SWITCHTRANSACT_API_KEY"),
		ProductsFile:    os.Getenv("PORTAL_PRODUCTS_FILE"),
		UseMockData:     os.Getenv("PORTAL_USE_MOCK_DATA") == "true",
		StatusInterval:  interval,
	}
}
