package router

import (
	"billstack/internal/handler"
	"billstack/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AuthRouter struct {
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.Auth
	tenantContext  *middleware.TenantContext
}

func NewAuthRouter(
	authHandler *handler.AuthHandler,
	authMiddleware *middleware.Auth,
	tenantContext *middleware.TenantContext,
) *AuthRouter {
	return &AuthRouter{
		authHandler:    authHandler,
		authMiddleware: authMiddleware,
		tenantContext:  tenantContext,
	}
}

func (ar *AuthRouter) RegisterRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		// 登入綁租戶子網域；註冊開新租戶則從主網域進來
		auth.POST("/login", ar.tenantContext.RequireTenantHost(), ar.authHandler.Login)
		auth.POST("/register", ar.authHandler.Register)
	}

	r.GET("/me",
		ar.tenantContext.RequireTenantHost(),
		ar.authMiddleware.Handler(),
		ar.authHandler.Me,
	)
}
