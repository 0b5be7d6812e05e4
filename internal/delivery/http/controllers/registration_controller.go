package controllers

import (
	"log/slog"
	"net/http"

	"ourevents/internal/delivery/http/helpers"
	"ourevents/internal/domain"
)

// RegistrationController handles registering users for events, either by the
// user themselves or by an admin on their behalf.
type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// RegistrationResponse describes a completed registration transition.
type RegistrationResponse struct {
	UserID  int64  `json:"user_id"`
	EventID int64  `json:"event_id"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

// RegistrationSuccessResponse is the success response envelope for the register/unregister endpoints (200).
type RegistrationSuccessResponse struct {
	Data  *RegistrationResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// RegisterSelf godoc
// @Summary Register for an event
// @Description Registers the authenticated user for the event.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/register [post]
func (c *RegistrationController) RegisterSelf(w http.ResponseWriter, r *http.Request) {
	c.self(w, r, domain.RegistrationActionRegister)
}

// UnregisterSelf godoc
// @Summary Unregister from an event
// @Description Removes the authenticated user's registration for the event.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_state (not registered)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/unregister [post]
func (c *RegistrationController) UnregisterSelf(w http.ResponseWriter, r *http.Request) {
	c.self(w, r, domain.RegistrationActionUnregister)
}

// RegisterUser godoc
// @Summary Register a user for an event
// @Description Registers the given user for the event. Requires ROLE_ADMIN.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/register/{eventId} [post]
func (c *RegistrationController) RegisterUser(w http.ResponseWriter, r *http.Request) {
	c.onBehalf(w, r, domain.RegistrationActionRegister)
}

// UnregisterUser godoc
// @Summary Unregister a user from an event
// @Description Removes the given user's registration for the event. Requires ROLE_ADMIN.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_state (not registered)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/unregister/{eventId} [post]
func (c *RegistrationController) UnregisterUser(w http.ResponseWriter, r *http.Request) {
	c.onBehalf(w, r, domain.RegistrationActionUnregister)
}

func (c *RegistrationController) self(w http.ResponseWriter, r *http.Request, action string) {
	actor := identity(r)
	if actor == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventID, err := helpers.PathID(r, "id")
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	c.transition(w, r, actor, actor.UserID, eventID, action)
}

func (c *RegistrationController) onBehalf(w http.ResponseWriter, r *http.Request, action string) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	c.transition(w, r, identity(r), userID, eventID, action)
}

func (c *RegistrationController) transition(w http.ResponseWriter, r *http.Request, actor *domain.Identity, userID, eventID int64, action string) {
	var (
		err     error
		message string
	)
	if action == domain.RegistrationActionRegister {
		err = c.Service.Register(r.Context(), actor, userID, eventID)
		message = "User successfully registered for the event."
	} else {
		err = c.Service.Unregister(r.Context(), actor, userID, eventID)
		message = "User successfully unregistered from the event."
	}
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RegistrationResponse{
		UserID:  userID,
		EventID: eventID,
		Action:  action,
		Message: message,
	})
}
