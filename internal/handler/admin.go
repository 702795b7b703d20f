package handler

import (
	"billstack/internal/core"
	"billstack/internal/dto"
	"billstack/internal/pkg/response"
	"billstack/internal/service"
	"billstack/internal/telemetry"
	"billstack/utils/validate"

	"github.com/gin-gonic/gin"
)

type AdminTenantHandler struct {
	trace          *telemetry.Trace
	tenantsService *service.TenantsService
}

func NewAdminTenantHandler(
	trace *telemetry.Trace,
	tenantsService *service.TenantsService,
) *AdminTenantHandler {
	return &AdminTenantHandler{trace: trace, tenantsService: tenantsService}
}

// Dashboard 平台儀表板
// @Summary 平台彙總統計
// @Tags Admin-Tenant
// @Security BearerAuth
// @Produce json
// @Success 200 {object} repository.DashboardStats
// @Failure 500 {object} map[string]string
// @Router /admin/dashboard [get]
func (h *AdminTenantHandler) Dashboard(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	stats, err := h.tenantsService.Dashboard(ctx)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, stats)
}

// List 租戶列表
// @Summary 取得租戶列表
// @Tags Admin-Tenant
// @Security BearerAuth
// @Produce json
// @Param page query int false "頁碼"
// @Param size query int false "每頁筆數"
// @Param status query string false "訂閱狀態"
// @Success 200 {array} dto.TenantResponseDto
// @Failure 500 {object} map[string]string
// @Router /admin/tenants [get]
func (h *AdminTenantHandler) List(c *gin.Context) {
	ctx, span, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.ListTenantsDto
	if cause, respErr := validate.BindQuery(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	tenants, total, err := h.tenantsService.List(ctx, &req)
	h.trace.ApplyTraceAttributes(span, core.TraceAdminTenantListMeta{
		Page:        req.Page,
		Size:        req.Size,
		Status:      string(req.Status),
		ResultCount: len(tenants),
	})
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"tenants": tenants, "total": total})
}

// Get 租戶詳情
// @Summary 取得單一租戶（含集合計數與連線狀態）
// @Tags Admin-Tenant
// @Security BearerAuth
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} dto.TenantDetailResponseDto
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID} [get]
func (h *AdminTenantHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "tenantID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	detail, err := h.tenantsService.GetDetail(ctx, id)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, detail)
}

// UpdateStatus 更新訂閱狀態
// @Summary 更新租戶訂閱狀態
// @Tags Admin-Tenant
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param body body dto.UpdateTenantStatusDto true "狀態資訊"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID}/status [patch]
func (h *AdminTenantHandler) UpdateStatus(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "tenantID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateTenantStatusDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.tenantsService.UpdateStatus(ctx, id, req.Status); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "tenant status updated successfully")
}

// UpdateActivation 平台層啟用/停用
// @Summary 啟用或停用租戶（軟刪除）
// @Tags Admin-Tenant
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param body body dto.UpdateTenantActivationDto true "啟用旗標"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID}/activation [patch]
func (h *AdminTenantHandler) UpdateActivation(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "tenantID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateTenantActivationDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.tenantsService.SetActivation(ctx, id, *req.IsActive); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "tenant activation updated successfully")
}

// UpdateSubscription 換方案
// @Summary 更新租戶訂閱方案
// @Tags Admin-Tenant
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param body body dto.UpdateTenantSubscriptionDto true "方案資訊"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID}/subscription [patch]
func (h *AdminTenantHandler) UpdateSubscription(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "tenantID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateTenantSubscriptionDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.tenantsService.UpdateSubscription(ctx, id, &req); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "tenant subscription updated successfully")
}
