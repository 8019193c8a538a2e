package server

import (
	"net/http"

	"github.com/growthlab/atlas/query"
)

// handleData builds the handler for one registered endpoint: reshape the
// request into a flat parameter bag, resolve it, fetch from the matched
// slice and return the rows.
func (s *Server) handleData(endpointName string) http.HandlerFunc {
	endpoint, _ := s.registry.Endpoint(endpointName)
	params := endpoint.PathParams()

	return func(w http.ResponseWriter, r *http.Request) {
		pathParams := make(map[string]string, len(params))
		for _, param := range params {
			pathParams[param] = r.PathValue(param)
		}
		queryParams := make(map[string]string)
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				queryParams[key] = values[0]
			}
		}

		req := query.RawRequest{
			Endpoint:    endpointName,
			PathParams:  pathParams,
			QueryParams: queryParams,
		}

		resolved, err := s.resolver.Resolve(r.Context(), req)
		if err != nil {
			if query.IsResolutionError(err) {
				writeResolutionError(w, err)
				return
			}
			s.logger.Errorw("Resolution failed",
				"endpoint", endpointName,
				"error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		dataset, _ := s.registry.Dataset(resolved.Dataset)
		rows, err := s.strategy.Fetch(r.Context(), dataset.Slices[resolved.Slice], resolved)
		if err != nil {
			s.logger.Errorw("Slice lookup failed",
				"endpoint", endpointName,
				"slice", resolved.Slice,
				"error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data":  rows,
			"query": resolved,
		})
	}
}

// handleClassification serves classification metadata:
// GET /classifications/{type}?level= lists entries, optionally filtered to
// one level.
func (s *Server) handleClassification(w http.ResponseWriter, r *http.Request) {
	facetType := r.PathValue("type")

	cls, ok := s.resolver.Classification(facetType)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown classification "+facetType)
		return
	}

	entries, err := cls.GetAll(r.Context(), r.URL.Query().Get("level"))
	if err != nil {
		s.logger.Errorw("Classification listing failed",
			"classification", facetType,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"classification": facetType,
		"levels":         cls.Levels(),
		"data":           entries,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"endpoints": len(s.registry.Endpoints),
	})
}
