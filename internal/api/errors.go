package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "skypark/internal/errors"
)

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Internal consistency faults (double release, inverted range from our own
// code paths) are logged server-side and surfaced as a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validation *apperrors.ValidationError
		slotTaken  *apperrors.SlotUnavailableError
		disabled   *apperrors.SlotDisabledError
		capacity   *apperrors.CapacityExceededError
		httpErr    *apperrors.HTTPError
	)

	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.As(err, &slotTaken):
		http.Error(w, slotTaken.Error(), http.StatusConflict)
	case errors.As(err, &disabled):
		http.Error(w, disabled.Error(), http.StatusConflict)
	case errors.As(err, &capacity):
		http.Error(w, capacity.Error(), http.StatusConflict)
	case errors.As(err, &httpErr):
		http.Error(w, httpErr.Message, httpErr.Code)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
