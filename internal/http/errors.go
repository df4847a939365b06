// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeJSON writes v as a JSON body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps errors from the catalog and pricing services to
// HTTP responses. A missing or unreachable store is a server-side failure.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		obs.Logger.Error(op+"_failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		WriteJSONError(w, http.StatusServiceUnavailable, "store_unavailable", "database not configured or unreachable")
	case errors.Is(err, catalog.ErrInvalidLimit):
		WriteJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	default:
		obs.Logger.Error(op+"_failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "store_error", err.Error())
	}
}
