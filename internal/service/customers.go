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

type CustomerService struct {
	trace *telemetry.Trace
}

func NewCustomerService(trace *telemetry.Trace) *CustomerService {
	return &CustomerService{trace: trace}
}

func (s *CustomerService) Create(
	ctx context.Context,
	handle *tenant.Handle,
	createDto *dto.CreateCustomerDto,
) (_ *model.Customer, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	customer := &model.Customer{
		Name:    createDto.Name,
		Email:   createDto.Email,
		Phone:   createDto.Phone,
		GSTIN:   createDto.GSTIN,
		State:   createDto.State,
		Address: createDto.Address,
	}
	customerID, err := tenantRepo.NewCustomerRepository(handle).Create(ctx, customer)
	if err != nil {
		return nil, cErr.DatabaseError("database Create customer error")
	}
	if oid, parseError := tenant.ParseObjectID(customerID); parseError == nil {
		customer.ID = oid
	}
	return customer, nil
}

func (s *CustomerService) List(
	ctx context.Context,
	handle *tenant.Handle,
) (_ []*model.Customer, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	customers, err := tenantRepo.NewCustomerRepository(handle).List(ctx)
	if err != nil {
		return nil, cErr.DatabaseError("database List customers error")
	}
	return customers, nil
}

func (s *CustomerService) GetByID(
	ctx context.Context,
	handle *tenant.Handle,
	customerID string,
) (_ *model.Customer, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	customer, err := tenantRepo.NewCustomerRepository(handle).GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, cErr.NotFound("customer not found")
		}
		return nil, cErr.DatabaseError("database GetByID customer error")
	}
	return customer, nil
}

func (s *CustomerService) UpdateByID(
	ctx context.Context,
	handle *tenant.Handle,
	customerID string,
	updateDto *dto.UpdateCustomerDto,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	setFields := bson.M{}
	if updateDto.Name != nil {
		setFields["name"] = *updateDto.Name
	}
	if updateDto.Email != nil {
		setFields["email"] = *updateDto.Email
	}
	if updateDto.Phone != nil {
		setFields["phone"] = *updateDto.Phone
	}
	if updateDto.GSTIN != nil {
		setFields["gstin"] = *updateDto.GSTIN
	}
	if updateDto.State != nil {
		setFields["state"] = *updateDto.State
	}
	if updateDto.Address != nil {
		setFields["address"] = *updateDto.Address
	}
	if len(setFields) == 0 {
		return cErr.BadRequestBody("no fields to update")
	}

	matched, err := tenantRepo.NewCustomerRepository(handle).UpdateByID(ctx, customerID, setFields)
	if err != nil {
		return cErr.DatabaseError("database UpdateByID customer error")
	}
	if matched == 0 {
		return cErr.NotFound("customer not found")
	}
	return nil
}

func (s *CustomerService) DeleteByID(
	ctx context.Context,
	handle *tenant.Handle,
	customerID string,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	deleted, err := tenantRepo.NewCustomerRepository(handle).DeleteByID(ctx, customerID)
	if err != nil {
		return cErr.DatabaseError("database DeleteByID customer error")
	}
	if deleted == 0 {
		return cErr.NotFound("customer not found")
	}
	return nil
}
