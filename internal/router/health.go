package router

import (
	"billstack/internal/handler"

	"github.com/gin-gonic/gin"
)

// HealthRouter 掛載探針路由；不套用 tenant/auth middleware。
type HealthRouter struct {
	health *handler.HealthHandler
}

func NewHealthRouter(health *handler.HealthHandler) *HealthRouter {
	return &HealthRouter{health: health}
}

func (hr *HealthRouter) RegisterHealthRoutes(r *gin.Engine) {
	g := r.Group("/health")
	{
		g.GET("/liveness", hr.health.Liveness)
		g.GET("/readiness", hr.health.Readiness)
	}
}
