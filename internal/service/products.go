package service

import (
	"context"
	"errors"

	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/tenant"
	tenantRepo "billstack/internal/database/tenant/repository"
	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
)

type ProductService struct {
	trace *telemetry.Trace
}

func NewProductService(trace *telemetry.Trace) *ProductService {
	return &ProductService{trace: trace}
}

func (s *ProductService) Create(
	ctx context.Context,
	handle *tenant.Handle,
	createDto *dto.CreateProductDto,
) (_ *model.Product, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	product := &model.Product{
		Name:        createDto.Name,
		SKU:         createDto.SKU,
		Description: createDto.Description,
		Price:       createDto.Price,
		GSTRate:     createDto.GSTRate,
		Stock:       createDto.Stock,
		Unit:        createDto.Unit,
	}
	productID, err := tenantRepo.NewProductRepository(handle).Create(ctx, product)
	if err != nil {
		return nil, cErr.DatabaseError("database Create product error")
	}
	if oid, parseError := tenant.ParseObjectID(productID); parseError == nil {
		product.ID = oid
	}
	return product, nil
}

func (s *ProductService) List(
	ctx context.Context,
	handle *tenant.Handle,
) (_ []*model.Product, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	products, err := tenantRepo.NewProductRepository(handle).List(ctx)
	if err != nil {
		return nil, cErr.DatabaseError("database List products error")
	}
	return products, nil
}

func (s *ProductService) GetByID(
	ctx context.Context,
	handle *tenant.Handle,
	productID string,
) (_ *model.Product, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	product, err := tenantRepo.NewProductRepository(handle).GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, cErr.NotFound("product not found")
		}
		return nil, cErr.DatabaseError("database GetByID product error")
	}
	return product, nil
}

func (s *ProductService) UpdateByID(
	ctx context.Context,
	handle *tenant.Handle,
	productID string,
	updateDto *dto.UpdateProductDto,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	setFields := bson.M{}
	if updateDto.Name != nil {
		setFields["name"] = *updateDto.Name
	}
	if updateDto.SKU != nil {
		setFields["sku"] = *updateDto.SKU
	}
	if updateDto.Description != nil {
		setFields["description"] = *updateDto.Description
	}
	if updateDto.Price != nil {
		setFields["price"] = *updateDto.Price
	}
	if updateDto.GSTRate != nil {
		setFields["gstRate"] = *updateDto.GSTRate
	}
	if updateDto.Stock != nil {
		setFields["stock"] = *updateDto.Stock
	}
	if updateDto.Unit != nil {
		setFields["unit"] = *updateDto.Unit
	}
	if len(setFields) == 0 {
		return cErr.BadRequestBody("no fields to update")
	}

	matched, err := tenantRepo.NewProductRepository(handle).UpdateByID(ctx, productID, setFields)
	if err != nil {
		return cErr.DatabaseError("database UpdateByID product error")
	}
	if matched == 0 {
		return cErr.NotFound("product not found")
	}
	return nil
}

func (s *ProductService) DeleteByID(
	ctx context.Context,
	handle *tenant.Handle,
	productID string,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	deleted, err := tenantRepo.NewProductRepository(handle).DeleteByID(ctx, productID)
	if err != nil {
		return cErr.DatabaseError("database DeleteByID product error")
	}
	if deleted == 0 {
		return cErr.NotFound("product not found")
	}
	return nil
}
