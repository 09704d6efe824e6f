package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"lumaregistrar/internal/delivery/http/helpers"
)

// Pinger reports whether a backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	Logger *slog.Logger
	Store  Pinger
}

// NewHealthController returns a controller; store may be nil when no external store is used.
func NewHealthController(logger *slog.Logger, store Pinger) *HealthController {
	return &HealthController{Logger: logger, Store: store}
}

// HealthData is the data object for GET /health.
type HealthData struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// Health godoc
// @Summary Liveness and store check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if c.Store == nil {
		helpers.WriteJSONSuccess(w, http.StatusOK, HealthData{Status: "ok", Store: "memory"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.Store.PingContext(ctx); err != nil {
		c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, "record store unavailable")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthData{Status: "ok", Store: "postgres"})
}
