package handlers

import (
	"context"
	"net/http"
	"time"

	"evaluation-service/shared/modules/utils"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 3 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/checkhealth", h.CheckHealth)
}

// CheckHealth runs every registered check. Any failure turns the response
// into 503 with the failing dependency marked "down".
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status[name] = "down: " + err.Error()
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, utils.CreateDetailedErrorResponse("SERVICE_UNAVAILABLE", "Evaluation service is degraded", status))
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(status))
}
