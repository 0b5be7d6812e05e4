package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"ourevents/internal/delivery/http/helpers"
	"ourevents/internal/domain"
)

// EventController handles the public event listing and the admin event mutations.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	ImageURL      string    `json:"image_url"`
	Capacity      int       `json:"capacity"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	PremiseID     int64     `json:"premise_id"`
	Categories    []int64   `json:"categories"`
}

func (req CreateEventRequest) input() domain.EventInput {
	return domain.EventInput{
		Title:         req.Title,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Capacity:      req.Capacity,
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		PremiseID:     req.PremiseID,
		CategoryIDs:   req.Categories,
	}
}

// UpdateEventRequest is the request body for PUT /events/{id}.
// Omitted fields keep their stored value; categories, when present, replaces the whole set.
type UpdateEventRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	ImageURL      *string    `json:"image_url"`
	Capacity      *int       `json:"capacity"`
	StartDatetime *time.Time `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	PremiseID     *int64     `json:"premise_id"`
	Categories    *[]int64   `json:"categories"`
}

func (req UpdateEventRequest) patch() domain.EventPatch {
	return domain.EventPatch{
		Title:         req.Title,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Capacity:      req.Capacity,
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		PremiseID:     req.PremiseID,
		CategoryIDs:   req.Categories,
	}
}

// EventListResponse is one page of events plus its pagination metadata.
type EventListResponse struct {
	Items []*domain.Event `json:"items"`
	helpers.PaginationMeta
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  *EventListResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns a page of events ordered by id, each with its premise and categories. Filters combine with AND.
// @Tags events
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size (max 100)" default(3)
// @Param category query int false "Only events tagged with this category id"
// @Param city query string false "Only events whose premise is in this city (exact match)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := helpers.ParseEventFilter(r)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	page := helpers.ParsePagination(r)

	result, err := c.Service.List(r.Context(), filter, page)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}

	items := result.Items
	if items == nil {
		items = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Items:          items,
		PaginationMeta: helpers.NewPaginationMeta(page, result.TotalCount),
	})
}

// EventSuccessResponse is the success response envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	event, err := c.Service.Get(r.Context(), id)
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event managed by the caller. The premise must exist; unknown category ids are ignored. Requires ROLE_ADMIN.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (premise)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Create(r.Context(), identity(r), req.input())
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Merges the given fields into the stored event and re-validates it. Requires ROLE_ADMIN.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), identity(r), id, req.patch())
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event, its category links and its registrations. Requires ROLE_ADMIN.
// @Tags events
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	if err := c.Service.Delete(r.Context(), identity(r), id); err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
