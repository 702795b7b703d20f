package handler

import (
	"billstack/internal/database/tenant"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/pkg/response"
	"billstack/internal/service"
	"billstack/internal/telemetry"

	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	trace              *telemetry.Trace
	maintenanceService *service.MaintenanceService
}

func NewMaintenanceHandler(
	trace *telemetry.Trace,
	maintenanceService *service.MaintenanceService,
) *MaintenanceHandler {
	return &MaintenanceHandler{trace: trace, maintenanceService: maintenanceService}
}

func tenantKeyParam(c *gin.Context) (string, error) {
	key := c.Param("tenantKey")
	if err := tenant.ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// HealthCheck 租戶資料庫健檢
// @Summary ping 租戶資料庫並列出集合
// @Tags Admin-Maintenance
// @Security BearerAuth
// @Produce json
// @Param tenantKey path string true "Tenant subdomain"
// @Success 200 {object} service.TenantHealth
// @Failure 503 {object} map[string]string
// @Router /admin/maintenance/{tenantKey}/health [get]
func (h *MaintenanceHandler) HealthCheck(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	key, err := tenantKeyParam(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	health, err := h.maintenanceService.HealthCheck(ctx, key)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, health)
}

// Backup 租戶資料庫快照
// @Summary 匯出租戶全集合快照
// @Tags Admin-Maintenance
// @Security BearerAuth
// @Produce json
// @Param tenantKey path string true "Tenant subdomain"
// @Success 200 {object} service.Snapshot
// @Failure 500 {object} map[string]string
// @Router /admin/maintenance/{tenantKey}/backup [post]
func (h *MaintenanceHandler) Backup(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	key, err := tenantKeyParam(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	snapshot, err := h.maintenanceService.Backup(ctx, key)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, snapshot)
}

// Restore 以快照覆蓋租戶資料庫
// @Summary 還原租戶快照
// @Tags Admin-Maintenance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tenantKey path string true "Tenant subdomain"
// @Param body body service.Snapshot true "備份快照"
// @Success 200 {object} service.RestoreResult
// @Failure 400 {object} map[string]string
// @Router /admin/maintenance/{tenantKey}/restore [post]
func (h *MaintenanceHandler) Restore(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	key, err := tenantKeyParam(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	var snapshot service.Snapshot
	if bindError := c.ShouldBindJSON(&snapshot); bindError != nil {
		end(bindError)
		response.AbortWithError(c, cErr.BadRequestBody("invalid snapshot payload: "+bindError.Error()))
		return
	}

	result, err := h.maintenanceService.Restore(ctx, key, &snapshot)
	if err != nil {
		end(err)
		// 部分完成時也把結果帶回去
		if result != nil && len(result.Completed) > 0 {
			c.Set("data", result)
		}
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, result)
}

// Stats 租戶資料庫儲存統計
// @Summary 取得租戶 dbStats
// @Tags Admin-Maintenance
// @Security BearerAuth
// @Produce json
// @Param tenantKey path string true "Tenant subdomain"
// @Success 200 {object} tenant.Stats
// @Failure 500 {object} map[string]string
// @Router /admin/maintenance/{tenantKey}/stats [get]
func (h *MaintenanceHandler) Stats(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	key, err := tenantKeyParam(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	stats, err := h.maintenanceService.Stats(ctx, key)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, stats)
}

// ReleaseConnection 手動踢掉租戶連線
// @Summary 關閉並移除租戶資料庫連線
// @Tags Admin-Maintenance
// @Security BearerAuth
// @Produce json
// @Param tenantKey path string true "Tenant subdomain"
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/maintenance/{tenantKey}/connection [delete]
func (h *MaintenanceHandler) ReleaseConnection(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	key, err := tenantKeyParam(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	if err := h.maintenanceService.ReleaseConnection(ctx, key); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "connection released successfully")
}

// Registry 註冊表現況
// @Summary 列出所有活連線與狀態
// @Tags Admin-Maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {array} service.RegistryEntry
// @Router /admin/registry [get]
func (h *MaintenanceHandler) Registry(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)
	response.Success(c, h.maintenanceService.RegistryOverview(ctx))
}
