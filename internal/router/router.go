package router

import (
	"net/http"

	"billstack/config"
	"billstack/internal/middleware"
	"billstack/internal/pkg/response"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var ProviderSet = wire.NewSet(
	NewRouter,
	NewAuthRouter,
	NewAdminRouter,
	NewApiRouter,
	NewHealthRouter,
)

// 透過依賴注入組出完整 HTTP 入口。
// middleware 順序有意義：trace → log → cors → recovery → ratelimit →
// tenant 解析 → response 封裝，之後才進各路由。
func NewRouter(
	config *config.Configuration,
	traceEntry *middleware.TraceEntry,
	logger *middleware.Logger,
	cors *middleware.Cors,
	recovery *middleware.Recovery,
	rateLimit *middleware.RateLimit,
	tenantContext *middleware.TenantContext,
	responseMiddleware *middleware.Response,
	authRouter *AuthRouter,
	adminRouter *AdminRouter,
	apiRouter *ApiRouter,
	healthRouter *HealthRouter,
) *gin.Engine {

	switch config.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(traceEntry.Handler())
	router.Use(logger.LoggerHandler())
	router.Use(cors.CorsHandler())
	router.Use(recovery.ErrorHandler())
	router.Use(rateLimit.Guard())
	router.Use(tenantContext.Handler())
	router.Use(responseMiddleware.FormatHandler())
	router.GET("/health-check", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Response{
			Code:        0,
			Data:        "ok",
			Message:     "success",
			Description: "service is alive",
		})
		c.Abort()
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if config.App.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRouter.RegisterRoutes(router)
	adminRouter.RegisterRoutes(router)
	apiRouter.RegisterRoutes(router)
	healthRouter.RegisterHealthRoutes(router)
	pprof.Register(router)
	return router
}
