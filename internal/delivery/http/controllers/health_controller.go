package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ourevents/internal/delivery/http/helpers"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse reports the state of the service and its database.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthSuccessResponse is the success response envelope for GET /healthz (200).
type HealthSuccessResponse struct {
	Data  *HealthResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type HealthController struct {
	Logger  *slog.Logger
	DB      Pinger
	Timeout time.Duration
}

func NewHealthController(logger *slog.Logger, db Pinger, timeout time.Duration) *HealthController {
	return &HealthController{
		Logger:  logger,
		DB:      db,
		Timeout: timeout,
	}
}

// Health godoc
// @Summary Health check
// @Description Reports whether the database answers a ping.
// @Tags health
// @Produce json
// @Success 200 {object} controllers.HealthSuccessResponse
// @Failure 503 {object} controllers.HealthSuccessResponse "database unreachable"
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.Timeout)
	defer cancel()

	if err := c.DB.PingContext(ctx); err != nil {
		c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
		helpers.WriteJSONSuccess(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
