package controllers

import (
	"log/slog"
	"net/http"

	"ourevents/internal/delivery/http/helpers"
	"ourevents/internal/domain"
)

type PremiseController struct {
	Logger  *slog.Logger
	Service domain.PremiseService
}

func NewPremiseController(logger *slog.Logger, svc domain.PremiseService) *PremiseController {
	return &PremiseController{
		Logger:  logger,
		Service: svc,
	}
}

// PremiseRequest is the request body for POST /premises and PUT /premises/{id}.
type PremiseRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

func (req PremiseRequest) premise(id int64) *domain.Premise {
	return &domain.Premise{
		ID:         id,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
	}
}

// ListPremisesSuccessResponse is the success response envelope for GET /premises (200).
type ListPremisesSuccessResponse struct {
	Data  []*domain.Premise `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PremiseSuccessResponse is the success response envelope for endpoints returning one premise.
type PremiseSuccessResponse struct {
	Data  *domain.Premise   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListPremises godoc
// @Summary List premises
// @Tags premises
// @Produce json
// @Success 200 {object} controllers.ListPremisesSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /premises [get]
func (c *PremiseController) ListPremises(w http.ResponseWriter, r *http.Request) {
	premises, err := c.Service.List(r.Context())
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	if premises == nil {
		premises = []*domain.Premise{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, premises)
}

// CreatePremise godoc
// @Summary Create a premise
// @Description Requires ROLE_ADMIN.
// @Tags premises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PremiseRequest true "Premise"
// @Success 201 {object} controllers.PremiseSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /premises [post]
func (c *PremiseController) CreatePremise(w http.ResponseWriter, r *http.Request) {
	var req PremiseRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	premise, err := c.Service.Create(r.Context(), identity(r), req.premise(0))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, premise)
}

// UpdatePremise godoc
// @Summary Update a premise
// @Description Replaces address, city and postal code. Requires ROLE_ADMIN.
// @Tags premises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Premise ID"
// @Param body body PremiseRequest true "Premise"
// @Success 200 {object} controllers.PremiseSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /premises/{id} [put]
func (c *PremiseController) UpdatePremise(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	var req PremiseRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	premise, err := c.Service.Update(r.Context(), identity(r), req.premise(id))
	if err != nil {
		respondError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, premise)
}

// DeletePremise godoc
// @Summary Delete a premise
// @Description Requires ROLE_ADMIN. A premise still hosting events cannot be deleted.
// @Tags premises
// @Security BearerAuth
// @Param id path int true "Premise ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (premise in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /premises/{id} [delete]
func (c *PremiseController) DeletePremise(w http.ResponseWriter, r *http.Request) {
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
