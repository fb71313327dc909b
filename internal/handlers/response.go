package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"event-registration-platform/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

// writeError maps domain errors onto HTTP status codes. Unknown errors are
// logged and surfaced as a generic 500 so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, models.ErrRegistrationNotFound),
		errors.Is(err, models.ErrDiscountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateTeamName),
		errors.Is(err, models.ErrDuplicateMemberEmail),
		errors.Is(err, models.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, models.ErrRegistrationClosed):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrUnknownModule),
		errors.Is(err, models.ErrNoModules):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("Error: %v", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
