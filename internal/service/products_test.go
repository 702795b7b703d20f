package service

import (
	"context"
	"testing"

	tenantRepo "billstack/internal/database/tenant/repository"
	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"
)

func float64Ptr(value float64) *float64 { return &value }

func TestProductCRUDAndStock(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	productService := NewProductService(newTestTrace(t))

	created, err := productService.Create(context.Background(), handle, &dto.CreateProductDto{
		Name:    "Steel Widget",
		SKU:     "WID-001",
		Price:   250,
		GSTRate: 18,
		Stock:   10,
		Unit:    "pcs",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected assigned product id")
	}

	if err := productService.UpdateByID(context.Background(), handle, created.ID.Hex(), &dto.UpdateProductDto{
		Price: float64Ptr(300),
	}); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}

	// 扣庫存走 $inc，確認存量跟著動
	products := tenantRepo.NewProductRepository(handle)
	if _, err := products.DecrementStock(context.Background(), created.ID.Hex(), 3); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}

	fetched, err := productService.GetByID(context.Background(), handle, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Price != 300 {
		t.Fatalf("expected price 300, got %v", fetched.Price)
	}
	if fetched.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", fetched.Stock)
	}

	if err := productService.DeleteByID(context.Background(), handle, created.ID.Hex()); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	_, err = productService.GetByID(context.Background(), handle, created.ID.Hex())
	assertErrorCode(t, err, cErr.NOT_FOUND)
}
