package helpers

import (
	"errors"
	"net/http"

	"ourevents/internal/domain"
)

// StatusFor maps a service error to its HTTP status and API error code.
// Errors outside the domain taxonomy map to 500 internal_error.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrCodeValidationFailed
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest, ErrCodeInvalidState
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// WriteError writes err in the response envelope and returns the status used.
// Internal errors are answered with a generic message; the caller logs the detail.
func WriteError(w http.ResponseWriter, err error) int {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		WriteJSONError(w, status, code, "internal server error")
		return status
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		WriteValidationError(w, domain.ErrValidation.Error(), ve.Fields)
		return status
	}
	WriteJSONError(w, status, code, err.Error())
	return status
}
