package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pamlee/kitchen/internal/catalog"
	"github.com/pamlee/kitchen/internal/orders"
	"github.com/pamlee/kitchen/internal/users"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// mapError translates domain errors into the API's status codes. Anything
// unrecognized is a storage-level failure and stays opaque to the caller.
func mapError(w http.ResponseWriter, err error) {
	var vErr *orders.ValidationError
	var tErr *orders.TransitionError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &tErr):
		writeError(w, http.StatusConflict, tErr.Error())
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, orders.ErrTrackerExists):
		writeError(w, http.StatusBadRequest, "Tracker ID already exists")
	case errors.Is(err, orders.ErrVersionConflict):
		writeError(w, http.StatusConflict, "Order was modified concurrently, retry")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, catalog.ErrExists):
		writeError(w, http.StatusBadRequest, "Product id already exists")
	case errors.Is(err, catalog.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, users.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Email and password required")
	case errors.Is(err, users.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, users.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
