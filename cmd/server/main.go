package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sigportal/internal/gateway"
	"sigportal/internal/platform/config"
	"sigportal/internal/platform/httpserver"
	"sigportal/internal/platform/logger"
	"sigportal/internal/platform/metrics"
	"sigportal/internal/portal"
	"sigportal/internal/proxy"
	"sigportal/internal/registry"
	httptransport "sigportal/internal/transport/http"
	"sigportal/web"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing sigportal",
		"addr", cfg.Addr,
		"upstream", cfg.UpstreamBaseURL,
		"mock_data", cfg.UseMockData,
	)

	products, err := buildRegistry(cfg)
	if err != nil {
		log.Error("failed to build product registry", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	endpoints := gateway.DirectEndpoints(cfg.UpstreamBaseURL)
	if cfg.ProxyBaseURL != "" {
		endpoints = gateway.ProxyEndpoints(cfg.ProxyBaseURL)
		log.Info("routing upstream calls through relay", "proxy", cfg.ProxyBaseURL)
	}

	gwOpts := []gateway.Option{gateway.WithMetrics(m)}
	if cfg.UseMockData {
		gwOpts = append(gwOpts, gateway.WithDoer(gateway.MockDoer{}))
		log.Warn("serving canned demo data, upstream API will not be called")
	}
	gw := gateway.New(gateway.DefaultConfig(endpoints), products, log, gwOpts...)

	monitor := gateway.NewMonitor(gw, cfg.StatusInterval, log)

	portalHandler := portal.NewHandler(gw, monitor, products, log, m)
	proxyHandler := proxy.NewHandler(gateway.DirectEndpoints(cfg.UpstreamBaseURL), nil, log, m)

	router := httptransport.NewRouter(portalHandler, proxyHandler, web.StaticFS(), log)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := monitor.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// buildRegistry assembles the product set: built-ins or a YAML file, with the
// environment credential overlaid on the default product when it carries none.
func buildRegistry(cfg config.Server) (*registry.Registry, error) {
	defs := registry.Defaults()
	if cfg.ProductsFile != "" {
		loaded, err := registry.LoadFile(cfg.ProductsFile)
		if err != nil {
			return nil, err
		}
		defs = loaded
	}

	if cfg.DefaultAPIKey != "" {
		for i, p := range defs {
			if p.ID == registry.DefaultProductID && p.Credential == "" {
				defs[i].Credential = cfg.DefaultAPIKey
			}
		}
	}

	// The canned transport never reads the credential, but the gateway still
	// fails fast on unconfigured products. Demo mode fills the gaps.
	if cfg.UseMockData {
		for i := range defs {
			if defs[i].Credential == "" {
				defs[i].Credential = "demo"
			}
		}
	}

	return registry.New(defs)
}
