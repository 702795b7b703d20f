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

type ProductHandler struct {
	trace          *telemetry.Trace
	productService *service.ProductService
}

func NewProductHandler(
	trace *telemetry.Trace,
	productService *service.ProductService,
) *ProductHandler {
	return &ProductHandler{trace: trace, productService: productService}
}

// Create 新增商品
// @Summary 新增商品
// @Tags Product
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateProductDto true "商品資訊"
// @Success 201 {object} model.Product
// @Failure 400 {object} map[string]string
// @Router /api/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	var req dto.CreateProductDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	product, err := h.productService.Create(ctx, handle, &req)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, product)
}

// List 商品列表
// @Summary 取得商品列表
// @Tags Product
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.Product
// @Router /api/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	products, err := h.productService.List(ctx, handle)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, products)
}

// Get 取得商品
// @Summary 取得單一商品
// @Tags Product
// @Security BearerAuth
// @Produce json
// @Param productID path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 404 {object} map[string]string
// @Router /api/products/{productID} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "productID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	product, err := h.productService.GetByID(ctx, handle, id)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, product)
}

// Update 更新商品
// @Summary 更新商品
// @Tags Product
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param productID path string true "Product ID"
// @Param body body dto.UpdateProductDto true "商品更新資訊"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{productID} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "productID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateProductDto
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.productService.UpdateByID(ctx, handle, id, &req); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "product updated successfully")
}

// Delete 刪除商品
// @Summary 刪除商品
// @Tags Product
// @Security BearerAuth
// @Produce json
// @Param productID path string true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{productID} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	handle := tenantHandleFrom(c)
	if handle == nil {
		response.AbortWithError(c, cErr.Unauthorized("missing tenant connection"))
		return
	}
	id, cause, respErr := validate.ParseHexID(c, "productID")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	if err := h.productService.DeleteByID(ctx, handle, id); err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "product deleted successfully")
}
