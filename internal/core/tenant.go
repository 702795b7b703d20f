package core

type Role string

const (
	RoleOwner Role = "owner" // 租戶擁有者：所有權限
	RoleAdmin Role = "admin" // 管理員
	RoleUser  Role = "user"  // 一般使用者
)

type Permission string

const (
	PermissionInvoices  Permission = "invoices"
	PermissionInventory Permission = "inventory"
	PermissionCustomers Permission = "customers"
	PermissionReports   Permission = "reports"
	PermissionSettings  Permission = "settings"
)

// AllPermissions 註冊租戶時授予 owner 的完整權限集合
var AllPermissions = []Permission{
	PermissionInvoices,
	PermissionInventory,
	PermissionCustomers,
	PermissionReports,
	PermissionSettings,
}

type SubscriptionPlan string

const (
	PlanBasic      SubscriptionPlan = "basic"
	PlanPro        SubscriptionPlan = "pro"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

// PlanPrices 月費（INR）
var PlanPrices = map[SubscriptionPlan]int64{
	PlanBasic:      299,
	PlanPro:        599,
	PlanEnterprise: 999,
}

type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionInactive  SubscriptionStatus = "inactive"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Principal 驗證通過後的請求身分，僅存在於單一請求生命週期
type Principal struct {
	UserID      string       `json:"userId"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
	TenantKey   string       `json:"tenantKey"`
}

// HasPermission owner 不受權限集合限制，其餘角色需明確持有
func (p *Principal) HasPermission(permission Permission) bool {
	if p.Role == RoleOwner {
		return true
	}
	for _, held := range p.Permissions {
		if held == permission {
			return true
		}
	}
	return false
}

// HasRole 角色需在允許集合內，空集合一律拒絕
func (p *Principal) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// gin.Context keys
const (
	ContextHostScope    = "hostScope"
	ContextTenantKey    = "tenantKey"
	ContextTenantHandle = "tenantHandle"
	ContextPrincipal    = "principal"
)
