package middleware

import (
	"billstack/internal/core"
	"billstack/internal/database/tenant"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/pkg/response"
	"billstack/internal/service"
	"billstack/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// TenantContext 從 Host 標頭解析請求的租戶範圍。租戶子網域在這裡
// 就取好資料庫連線掛進 context，連不上直接以 5xx 擋下；
// 目錄查詢與身分驗證留給後面的 Auth。
type TenantContext struct {
	trace   *telemetry.Trace
	handles service.HandleSource
}

func NewTenantContext(trace *telemetry.Trace, handles service.HandleSource) *TenantContext {
	return &TenantContext{trace: trace, handles: handles}
}

func (m *TenantContext) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanTenantMiddleware))

		scope := core.ResolveHost(c.Request.Host)
		c.Set(core.ContextHostScope, scope)

		meta := core.TraceTenantMiddlewareMeta{
			Host:  c.Request.Host,
			Scope: scopeName(scope.Kind),
		}

		if scope.Kind == core.HostTenant {
			if err := tenant.ValidateKey(scope.Key); err != nil {
				meta.Status = "invalid_tenant_key"
				m.trace.ApplyTraceAttributes(span, meta)
				response.AbortWithError(c, err)
				end(err)
				return
			}
			handle, err := m.handles.Acquire(c.Request.Context(), scope.Key)
			if err != nil {
				meta.Status = "acquire_failed"
				m.trace.ApplyTraceAttributes(span, meta)
				response.AbortWithError(c, err)
				end(err)
				return
			}
			c.Set(core.ContextTenantKey, scope.Key)
			c.Set(core.ContextTenantHandle, handle)
			meta.TenantKey = scope.Key
		}

		meta.Status = "ok"
		m.trace.ApplyTraceAttributes(span, meta)
		end(nil)
		c.Next()
	}
}

// RequireAdminHost 控制平面路由只接受 admin 子網域
func (m *TenantContext) RequireAdminHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := c.Get(core.ContextHostScope)
		scope, castOK := raw.(core.HostScope)
		if !ok || !castOK || scope.Kind != core.HostAdmin {
			response.AbortWithError(c, cErr.Forbidden("admin host required"))
			return
		}
		c.Next()
	}
}

// RequireTenantHost 租戶路由必須帶租戶子網域
func (m *TenantContext) RequireTenantHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := c.Get(core.ContextHostScope)
		scope, castOK := raw.(core.HostScope)
		if !ok || !castOK || scope.Kind != core.HostTenant {
			response.AbortWithError(c, cErr.TenantKeyInvalid("tenant subdomain required"))
			return
		}
		c.Next()
	}
}

func scopeName(kind core.HostKind) string {
	switch kind {
	case core.HostAdmin:
		return "admin"
	case core.HostTenant:
		return "tenant"
	default:
		return "unscoped"
	}
}
