package handler

import (
	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/pkg/response"
	"billstack/internal/service"
	"billstack/internal/telemetry"
	"billstack/utils/validate"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	trace           *telemetry.Trace
	customerService *service.CustomerService
}

func NewCustomerHandler(
	trace *telemetry.Trace,
	customerService *service.CustomerService,
) *CustomerHandler {
	return &CustomerHandler{trace: trace, customerService: customerService}
}

// Create 新增客戶
// @Summary 新增客戶
// @Tags Customer
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateCustomerDto true "客戶資訊"
// @Success 201 {object} model.Customer
// @Failure 400 {object} map[string]string
// @Router /api/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	var req dto.CreateCustomerDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	customer, err := h.customerService.Create(ctx, handle, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, customer)
}

// List 客戶列表
// @Summary 取得客戶列表
// @Tags Customer
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.Customer
// @Router /api/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	customers, err := h.customerService.List(ctx, handle)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, customers)
}

// Get 取得客戶
// @Summary 取得單一客戶
// @Tags Customer
// @Security BearerAuth
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {object} model.Customer
// @Failure 404 {object} map[string]string
// @Router /api/customers/{customerID} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "customerID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	customer, err := h.customerService.GetByID(ctx, handle, id)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, customer)
}

// Update 更新客戶
// @Summary 更新客戶
// @Tags Customer
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param customerID path string true "Customer ID"
// @Param body body dto.UpdateCustomerDto true "客戶更新資訊"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/customers/{customerID} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "customerID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateCustomerDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.customerService.UpdateByID(ctx, handle, id, &req); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "customer updated successfully")
}

// Delete 刪除客戶
// @Summary 刪除客戶
// @Tags Customer
// @Security BearerAuth
// @Produce json
// @Param customerID path string true "Customer ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/customers/{customerID} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "customerID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.customerService.DeleteByID(ctx, handle, id); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "customer deleted successfully")
}
