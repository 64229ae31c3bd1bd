// internal/app/features/respond/respond.go

// Package respond centralizes JSON responses and the mapping from registry
// errors to HTTP status codes, so every feature speaks the same dialect.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/registry"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Err maps a registry error onto the wire: validation problems are 400 with
// the offending field, ErrNotFound 404, ErrForbidden 403, anything else a
// logged 500.
func Err(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *registry.ValidationError
	switch {
	case errors.As(err, &ve):
		JSON(w, http.StatusBadRequest, errorBody{Error: ve.Msg, Field: ve.Field})
	case errors.Is(err, registry.ErrNotFound):
		JSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, registry.ErrForbidden):
		JSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	default:
		log.Error("request failed", zap.Error(err))
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
