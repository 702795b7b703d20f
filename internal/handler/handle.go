package handler

import (
	"billstack/internal/core"
	"billstack/internal/database/tenant"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
)

// ProviderSet Provider对象集合
var ProviderSet = wire.NewSet(
	NewAuthHandler,
	NewAdminTenantHandler,
	NewMaintenanceHandler,
	NewCustomerHandler,
	NewProductHandler,
	NewInvoiceHandler,
	NewHealthHandler,
)

// tenantHandleFrom 取 Auth middleware 放進 context 的租戶連線
func tenantHandleFrom(c *gin.Context) *tenant.Handle {
	raw, ok := c.Get(core.ContextTenantHandle)
	if !ok {
		return nil
	}
	handle, castOK := raw.(*tenant.Handle)
	if !castOK {
		return nil
	}
	return handle
}
