package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse is the body of /health.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// HealthHandler answers liveness probes. It deliberately has no database
// dependency: /health reports process liveness, the data endpoints report
// backend reachability.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}
