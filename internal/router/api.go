package router

import (
	"billstack/internal/core"
	"billstack/internal/handler"
	"billstack/internal/middleware"

	"github.com/gin-gonic/gin"
)

type ApiRouter struct {
	customerHandler *handler.CustomerHandler
	productHandler  *handler.ProductHandler
	invoiceHandler  *handler.InvoiceHandler
	tenantContext   *middleware.TenantContext
	authMiddleware  *middleware.Auth
}

func NewApiRouter(
	customerHandler *handler.CustomerHandler,
	productHandler *handler.ProductHandler,
	invoiceHandler *handler.InvoiceHandler,
	tenantContext *middleware.TenantContext,
	authMiddleware *middleware.Auth,
) *ApiRouter {
	return &ApiRouter{
		customerHandler: customerHandler,
		productHandler:  productHandler,
		invoiceHandler:  invoiceHandler,
		tenantContext:   tenantContext,
		authMiddleware:  authMiddleware,
	}
}

// RegisterRoutes 租戶業務 API：一律走租戶子網域 + Bearer token，
// 權限守門逐資源掛在 group 上。
func (ar *ApiRouter) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api",
		ar.tenantContext.RequireTenantHost(),
		ar.authMiddleware.Handler(),
	)

	customers := api.Group("/customers", ar.authMiddleware.RequirePermission(core.PermissionCustomers))
	{
		customers.POST("", ar.customerHandler.Create)
		customers.GET("", ar.customerHandler.List)
		customers.GET("/:customerID", ar.customerHandler.Get)
		customers.PUT("/:customerID", ar.customerHandler.Update)
		customers.DELETE("/:customerID", ar.customerHandler.Delete)
	}

	products := api.Group("/products", ar.authMiddleware.RequirePermission(core.PermissionInventory))
	{
		products.POST("", ar.productHandler.Create)
		products.GET("", ar.productHandler.List)
		products.GET("/:productID", ar.productHandler.Get)
		products.PUT("/:productID", ar.productHandler.Update)
		products.DELETE("/:productID", ar.productHandler.Delete)
	}

	invoices := api.Group("/invoices", ar.authMiddleware.RequirePermission(core.PermissionInvoices))
	{
		invoices.POST("", ar.invoiceHandler.Create)
		invoices.GET("", ar.invoiceHandler.List)
		invoices.GET("/:invoiceID", ar.invoiceHandler.Get)
		invoices.PATCH("/:invoiceID/status", ar.invoiceHandler.UpdateStatus)
		invoices.DELETE("/:invoiceID", ar.invoiceHandler.Delete)
	}
}
