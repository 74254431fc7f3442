package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/deck-service/internal/api/shared"
	"github.com/phrazzld/deck-service/internal/domain"
	"github.com/phrazzld/deck-service/internal/domain/scheduler"
	"github.com/phrazzld/deck-service/internal/service"
	"github.com/phrazzld/deck-service/internal/store"
)

// statusFromError maps a service-layer error to an HTTP status code and a
// sanitized client message. Unrecognized errors map to 500 with a generic
// message so internal detail never leaks to clients.
func statusFromError(err error) (int, string) {
	switch {
	case store.IsNotFoundError(err):
		return http.StatusNotFound, "resource not found"
	case service.IsConflictError(err):
		return http.StatusConflict, "resource is not active"
	case errors.Is(err, domain.ErrNotActive):
		return http.StatusConflict, "resource is not active"
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, "resource already exists"
	case isValidationError(err):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// isValidationError reports whether err comes from domain validation.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidID) ||
		errors.Is(err, domain.ErrInvalidDeckName) ||
		errors.Is(err, domain.ErrInvalidUsername) ||
		errors.Is(err, domain.ErrInvalidContent) ||
		errors.Is(err, scheduler.ErrInvalidAction) ||
		errors.Is(err, scheduler.ErrInvalidPreset)
}

// respondServiceError writes the mapped error response for err.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFromError(err)
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
