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

type InvoiceHandler struct {
	trace          *telemetry.Trace
	invoiceService *service.InvoiceService
}

func NewInvoiceHandler(
	trace *telemetry.Trace,
	invoiceService *service.InvoiceService,
) *InvoiceHandler {
	return &InvoiceHandler{trace: trace, invoiceService: invoiceService}
}

// Create 開發票
// @Summary 開立發票（GST 稅額自動計算）
// @Tags Invoice
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateInvoiceDto true "發票資訊"
// @Success 201 {object} model.Invoice
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	var req dto.CreateInvoiceDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	tenantKey := c.GetString(core.ContextTenantKey)
	invoice, err := h.invoiceService.Create(ctx, handle, tenantKey, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, invoice)
}

// List 發票列表
// @Summary 取得發票列表，可依狀態過濾
// @Tags Invoice
// @Security BearerAuth
// @Produce json
// @Param status query string false "發票狀態"
// @Success 200 {array} model.Invoice
// @Router /api/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	var req dto.ListInvoicesDto
	if cause, respErr := validate.BindQuery(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	invoices, err := h.invoiceService.List(ctx, handle, req.Status)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, invoices)
}

// Get 取得發票
// @Summary 取得單一發票
// @Tags Invoice
// @Security BearerAuth
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {object} model.Invoice
// @Failure 404 {object} map[string]string
// @Router /api/invoices/{invoiceID} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "invoiceID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	invoice, err := h.invoiceService.GetByID(ctx, handle, id)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, invoice)
}

// UpdateStatus 發票狀態轉移
// @Summary 更新發票狀態（paid/cancelled 為終態）
// @Tags Invoice
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Param body body dto.UpdateInvoiceStatusDto true "狀態資訊"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/invoices/{invoiceID}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "invoiceID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateInvoiceStatusDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.invoiceService.UpdateStatus(ctx, handle, id, req.Status); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "invoice status updated successfully")
}

// Delete 刪除發票
// @Summary 刪除發票（僅 draft 與 cancelled）
// @Tags Invoice
// @Security BearerAuth
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/invoices/{invoiceID} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "invoiceID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.invoiceService.Delete(ctx, handle, id); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "invoice deleted successfully")
}
