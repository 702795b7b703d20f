package handler

import (
	"billstack/internal/core"
	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/pkg/response"
	"billstack/internal/service"
	"billstack/internal/telemetry"
	"billstack/utils/validate"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	trace          *telemetry.Trace
	authService    *service.AuthService
	tenantsService *service.TenantsService
}

func NewAuthHandler(
	trace *telemetry.Trace,
	authService *service.AuthService,
	tenantsService *service.TenantsService,
) *AuthHandler {
	return &AuthHandler{
		trace:          trace,
		authService:    authService,
		tenantsService: tenantsService,
	}
}

// Login 租戶使用者登入
// @Summary 使用者登入
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginDto true "登入資訊"
// @Success 200 {object} dto.LoginResponseDto
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.LoginDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	tenantKey := c.GetString(core.ContextTenantKey)
	if tenantKey == "" {
		response.AbortWithError(c, cErr.TenantKeyInvalid("tenant subdomain required"))
		return
	}

	res, err := h.authService.Login(ctx, tenantKey, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, res)
}

// Register 開新租戶
// @Summary 註冊租戶
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterTenantDto true "租戶資訊"
// @Success 201 {object} dto.RegisterTenantResponseDto
// @Failure 400 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.RegisterTenantDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	res, err := h.tenantsService.Register(ctx, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, res)
}

// Me 取當前請求身分
// @Summary 取得當前使用者
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} core.Principal
// @Failure 401 {object} map[string]string
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	raw, ok := c.Get(core.ContextPrincipal)
	if !ok {
		response.AbortWithError(c, cErr.Unauthorized("missing principal"))
		return
	}
	response.Success(c, raw)
}
