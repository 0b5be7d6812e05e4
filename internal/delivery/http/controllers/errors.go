package controllers

import (
	"log/slog"
	"net/http"

	"ourevents/internal/delivery/http/helpers"
	"ourevents/internal/delivery/http/middleware"
	"ourevents/internal/domain"
)

// respondError writes err through the status mapping. Only errors that fall
// outside the domain taxonomy are logged; the client sees a generic message.
func respondError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := helpers.StatusFor(err); status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteError(w, err)
}

// identity returns the caller set by RequireAuth, or nil for anonymous requests.
func identity(r *http.Request) *domain.Identity {
	id, _ := middleware.IdentityFromContext(r.Context())
	return id
}
