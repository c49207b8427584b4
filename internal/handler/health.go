package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ServiceName is reported by the health endpoint
const ServiceName = "slidequiz-backend"

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName})
}
