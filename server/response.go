package server

import (
	"encoding/json"
	"net/http"

	"github.com/growthlab/atlas/errors"
	"github.com/growthlab/atlas/query"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return errors.Wrap(err, "encode JSON")
	}
	return nil
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeResolutionError maps a resolver failure onto an HTTP status and
// surfaces the error's message, details and hints to the caller. Resolution
// failures are deterministic, so retrying never helps and no retry guidance
// is offered.
func writeResolutionError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.IsAny(err, query.ErrUnknownEndpoint, query.ErrEntityNotFound) {
		status = http.StatusNotFound
	}

	body := map[string]interface{}{"error": err.Error()}
	if details := errors.GetAllDetails(err); len(details) > 0 {
		body["details"] = details
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		body["hints"] = hints
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
