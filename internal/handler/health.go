package handler

import (
	"net/http"

	"billstack/internal/database/tenant"
	"billstack/internal/service"

	"github.com/gin-gonic/gin"
)

// HealthHandler 探針端點；readiness 會附上目前的租戶連線數。
type HealthHandler struct {
	healthStatus *service.HealthService
	registry     *tenant.Registry
}

func NewHealthHandler(status *service.HealthService, registry *tenant.Registry) *HealthHandler {
	return &HealthHandler{healthStatus: status, registry: registry}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	if h.healthStatus.IsLive() {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
		return
	}
	c.Status(http.StatusServiceUnavailable)
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	if !h.healthStatus.IsReady() {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            "ready",
		"tenantConnections": h.registry.Len(),
	})
}
