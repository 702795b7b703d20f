package middleware

import (
	"strings"

	"billstack/internal/core"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/pkg/response"
	"billstack/internal/service"
	"billstack/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Auth struct {
	logger      *zap.Logger
	trace       *telemetry.Trace
	authService *service.AuthService
}

func NewAuth(
	logger *zap.Logger,
	trace *telemetry.Trace,
	authService *service.AuthService,
) *Auth {
	return &Auth{
		logger:      logger,
		trace:       trace,
		authService: authService,
	}
}

// Handler Bearer token 驗證：成功後把 Principal 與租戶連線
// 放進 gin.Context，下游 handler 直接取用。
func (m *Auth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span, end := m.trace.WithSpan(c.Request.Context(), string(core.SpanAuthMiddleware))

		authorization := c.GetHeader("Authorization")
		if !strings.HasPrefix(authorization, "Bearer ") {
			err := cErr.Unauthorized("missing bearer token")
			m.trace.ApplyTraceAttributes(span, core.TraceAuthMiddlewareMeta{Status: "missing_token"})
			response.AbortWithError(c, err)
			end(err)
			return
		}
		tokenString := strings.TrimPrefix(authorization, "Bearer ")

		hostTenantKey := c.GetString(core.ContextTenantKey)
		principal, handle, err := m.authService.Authenticate(ctx, tokenString, hostTenantKey)
		if err != nil {
			m.trace.ApplyTraceAttributes(span, core.TraceAuthMiddlewareMeta{
				TenantKey: hostTenantKey,
				Status:    "authenticate_failed",
			})
			response.AbortWithError(c, err)
			end(err)
			return
		}

		c.Set(core.ContextPrincipal, principal)
		c.Set(core.ContextTenantHandle, handle)
		end(nil)
		c.Next()
	}
}

// RequirePermission 權限守門；owner 一律放行（Principal.HasPermission 內建）
func (m *Auth) RequirePermission(permission core.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			response.AbortWithError(c, cErr.Unauthorized("missing principal"))
			return
		}
		if !principal.HasPermission(permission) {
			response.AbortWithError(c, cErr.InsufficientPrivilege("missing permission: "+string(permission)))
			return
		}
		c.Next()
	}
}

// RequireRole 角色守門
func (m *Auth) RequireRole(roles ...core.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			response.AbortWithError(c, cErr.Unauthorized("missing principal"))
			return
		}
		if !principal.HasRole(roles...) {
			response.AbortWithError(c, cErr.InsufficientPrivilege("insufficient role"))
			return
		}
		c.Next()
	}
}

// PrincipalFrom handler 取當前請求身分
func PrincipalFrom(c *gin.Context) *core.Principal {
	raw, ok := c.Get(core.ContextPrincipal)
	if !ok {
		return nil
	}
	principal, castOK := raw.(*core.Principal)
	if !castOK {
		return nil
	}
	return principal
}
