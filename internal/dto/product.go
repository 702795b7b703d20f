package dto

type CreateProductDto struct {
	Name        string  `json:"name" binding:"required"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	GSTRate     float64 `json:"gstRate" binding:"omitempty,min=0,max=100"`
	Stock       int64   `json:"stock" binding:"omitempty,min=0"`
	Unit        string  `json:"unit"`
}

type UpdateProductDto struct {
	Name        *string  `json:"name"`
	SKU         *string  `json:"sku"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	GSTRate     *float64 `json:"gstRate" binding:"omitempty,min=0,max=100"`
	Stock       *int64   `json:"stock" binding:"omitempty,min=0"`
	Unit        *string  `json:"unit"`
}
