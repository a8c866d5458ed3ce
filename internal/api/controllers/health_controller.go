package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelmind/internal/services"
	"travelmind/pkg/utils"
)

type HealthController struct {
	healthService services.HealthServiceInterface
}

func NewHealthController(healthService services.HealthServiceInterface) *HealthController {
	return &HealthController{healthService: healthService}
}

// Health godoc
// @Summary Liveness of Postgres and Redis
// @Tags System
// @Produce json
// @Success 200 {object} response_models.HealthResponse
// @Failure 503 {object} response_models.HealthResponse
// @Router /api/health [get]
func (h *HealthController) Health(c *gin.Context) {
	status := h.healthService.Check(c.Request.Context())
	if status.OK {
		utils.RespondSuccess(c, status, "")
		return
	}
	c.JSON(http.StatusServiceUnavailable, utils.APIResponse{
		Status:  "error",
		Code:    http.StatusServiceUnavailable,
		Reason:  "unhealthy",
		TraceID: c.GetString("trace_id"),
		Data:    status,
	})
}
