package service

import (
	"context"

	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/mongodb/repository"
	"billstack/internal/database/tenant"

	"github.com/google/wire"
)

// TenantDirectory 控制平面租戶目錄的讀取面；
// 抽成介面讓驗證流程可以在測試裡換成假目錄。
type TenantDirectory interface {
	GetBySubdomain(contextValue context.Context, subdomain string) (*model.Tenant, error)
}

// HandleSource 取得租戶資料庫連線；由 tenant.Registry 實作
type HandleSource interface {
	Acquire(ctx context.Context, tenantKey string) (*tenant.Handle, error)
}

var ProviderSet = wire.NewSet(
	NewHealthService,
	NewAuthService,
	NewTenantsService,
	NewMaintenanceService,
	NewInvoiceService,
	NewCustomerService,
	NewProductService,
	wire.Bind(new(TenantDirectory), new(*repository.TenantsRepository)),
	wire.Bind(new(HandleSource), new(*tenant.Registry)),
)
