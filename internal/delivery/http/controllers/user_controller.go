package controllers

import (
	"log/slog"
	"net/http"

	"ourevents/internal/delivery/http/helpers"
	"ourevents/internal/domain"
)

// GetMeSuccessResponse is the success response envelope for GET /users/me (200).
type GetMeSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListUsersSuccessResponse is the success response envelope for GET /users (200).
type ListUsersSuccessResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsOnlySuccessResponse is the success response envelope for GET /users/me/events (200).
type ListEventsOnlySuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserController handles profile and user administration endpoints.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
	Events  domain.EventService
}

// NewUserController creates a UserController with the given logger and services.
func NewUserController(logger *slog.Logger, svc domain.UserService, events domain.EventService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
		Events:  events,
	}
}

// GetMe godoc
// @Summary Get current user
// @Description Returns the authenticated user's profile.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.GetMeSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	actor := identity(r)
	if actor == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetByID(r.Context(), actor.UserID)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ListMyEvents godoc
// @Summary List my registered events
// @Description Returns the events the authenticated user is registered for, ordered by start time.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListEventsOnlySuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/events [get]
func (c *UserController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Events.ListRegistered(r.Context(), identity(r))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListUsers godoc
// @Summary List users
// @Description Requires ROLE_ADMIN.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListUsersSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [get]
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Service.List(r.Context(), identity(r))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// ToggleAdmin godoc
// @Summary Grant or revoke ROLE_ADMIN
// @Description Flips the admin role of another user. Requires ROLE_ADMIN; admins cannot change their own role.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} controllers.GetMeSuccessResponse "data contains the updated user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{id}/toggle-admin [patch]
func (c *UserController) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	user, err := c.Service.ToggleAdmin(r.Context(), identity(r), id)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
