package dto

import (
	"time"

	"billstack/internal/core"
)

type InvoiceItemDto struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type CreateInvoiceDto struct {
	CustomerID string           `json:"customerId" binding:"required"`
	Items      []InvoiceItemDto `json:"items" binding:"required,min=1,dive"`
	DueAt      *time.Time       `json:"dueAt"`
}

type UpdateInvoiceStatusDto struct {
	Status core.InvoiceStatus `json:"status" binding:"required,oneof=draft sent paid cancelled"`
}

type ListInvoicesDto struct {
	Status core.InvoiceStatus `form:"status" binding:"omitempty,oneof=draft sent paid cancelled"`
}
