package server

import (
	"net/http"
)

// setupRoutes configures all HTTP handlers. Data routes are registered
// dynamically from the endpoint registry: each endpoint's URL pattern is
// mounted as-is, so path placeholders like {product_id} become mux path
// values.
func (s *Server) setupRoutes() {
	for name, endpoint := range s.registry.Endpoints {
		pattern := "GET " + endpoint.URL
		s.mux.HandleFunc(pattern, s.withMiddleware(s.handleData(name)))
		s.logger.Infow("Registered data route",
			"endpoint", name,
			"pattern", pattern,
			"dataset", endpoint.Dataset)
	}

	s.mux.HandleFunc("GET /classifications/{type}", s.withMiddleware(s.handleClassification))
	s.mux.HandleFunc("GET /health", s.withMiddleware(s.handleHealth))
}

// withMiddleware applies the standard middleware chain: request id, CORS
// and rate limiting, innermost first.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return s.requestIDMiddleware(s.corsMiddleware(s.rateLimitMiddleware(next)))
}
