package router

import (
	"billstack/internal/handler"
	"billstack/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AdminRouter struct {
	tenantHandler      *handler.AdminTenantHandler
	maintenanceHandler *handler.MaintenanceHandler
	tenantContext      *middleware.TenantContext
}

func NewAdminRouter(
	tenantHandler *handler.AdminTenantHandler,
	maintenanceHandler *handler.MaintenanceHandler,
	tenantContext *middleware.TenantContext,
) *AdminRouter {
	return &AdminRouter{
		tenantHandler:      tenantHandler,
		maintenanceHandler: maintenanceHandler,
		tenantContext:      tenantContext,
	}
}

func (ar *AdminRouter) RegisterRoutes(r *gin.Engine) {
	admin := r.Group("/admin", ar.tenantContext.RequireAdminHost())
	{
		admin.GET("/dashboard", ar.tenantHandler.Dashboard)

		tenants := admin.Group("/tenants")
		{
			tenants.GET("", ar.tenantHandler.List)
			tenants.GET("/:tenantID", ar.tenantHandler.Get)
			tenants.PATCH("/:tenantID/status", ar.tenantHandler.UpdateStatus)
			tenants.PATCH("/:tenantID/activation", ar.tenantHandler.UpdateActivation)
			tenants.PATCH("/:tenantID/subscription", ar.tenantHandler.UpdateSubscription)
		}

		maintenance := admin.Group("/maintenance/:tenantKey")
		{
			maintenance.GET("/health", ar.maintenanceHandler.HealthCheck)
			maintenance.POST("/backup", ar.maintenanceHandler.Backup)
			maintenance.POST("/restore", ar.maintenanceHandler.Restore)
			maintenance.GET("/stats", ar.maintenanceHandler.Stats)
			maintenance.DELETE("/connection", ar.maintenanceHandler.ReleaseConnection)
		}

		admin.GET("/registry", ar.maintenanceHandler.Registry)
	}
}
