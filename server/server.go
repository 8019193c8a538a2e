// Package server exposes the resolver over HTTP. It is deliberately thin:
// it reshapes each request into a flat parameter bag, hands it to the
// resolver, runs the matched query through the lookup strategy and writes
// the rows back as JSON. All interesting logic lives in the query,
// classification and lookup packages.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/growthlab/atlas/classification"
	"github.com/growthlab/atlas/config"
	"github.com/growthlab/atlas/lookup"
	"github.com/growthlab/atlas/query"
	"github.com/growthlab/atlas/registry"
)

// Server wires the resolver, registry and lookup strategy to HTTP routes.
type Server struct {
	logger   *zap.SugaredLogger
	config   config.ServerConfig
	registry *registry.Registry
	resolver *query.Resolver
	strategy lookup.Strategy
	limiter  *rate.Limiter
	mux      *http.ServeMux

	httpServer *http.Server
}

// New builds a server over a validated registry, the classifications keyed
// by facet type, and a lookup strategy.
func New(
	logger *zap.SugaredLogger,
	cfg config.ServerConfig,
	reg *registry.Registry,
	classifications map[string]classification.Classification,
	strategy lookup.Strategy,
) *Server {
	s := &Server{
		logger:   logger,
		config:   cfg,
		registry: reg,
		resolver: query.NewResolver(reg, classifications),
		strategy: strategy,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Atlas server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Infow("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
