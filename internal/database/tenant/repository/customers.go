package repository

import (
	"context"
	"time"

	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/tenant"

	"go.mongodb.org/mongo-driver/bson"
)

type CustomerRepository struct {
	collection tenant.Collection
}

func NewCustomerRepository(handle *tenant.Handle) *CustomerRepository {
	return &CustomerRepository{
		collection: handle.Collection(core.TenantCollectionCustomers),
	}
}

func (repository *CustomerRepository) Create(
	contextValue context.Context,
	customer *model.Customer,
) (_ string, returnedError error) {

	nowUTC := time.Now().UTC()
	customer.CreatedAt = nowUTC
	customer.UpdatedAt = nowUTC
	return repository.collection.InsertOne(contextValue, customer)
}

func (repository *CustomerRepository) GetByID(
	contextValue context.Context,
	customerIdentifier string,
) (_ *model.Customer, returnedError error) {

	objectID, parseError := tenant.ParseObjectID(customerIdentifier)
	if parseError != nil {
		return nil, parseError
	}
	var customer model.Customer
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": objectID}, nil, &customer); returnedError != nil {
		return nil, returnedError
	}
	return &customer, nil
}

func (repository *CustomerRepository) List(
	contextValue context.Context,
) (_ []*model.Customer, returnedError error) {

	var customers []*model.Customer
	if returnedError = repository.collection.FindAll(contextValue, nil, &customers); returnedError != nil {
		return nil, returnedError
	}
	return customers, nil
}

func (repository *CustomerRepository) UpdateByID(
	contextValue context.Context,
	customerIdentifier string,
	setFields bson.M,
) (_ int64, returnedError error) {

	setFields["updatedAt"] = time.Now().UTC()
	return repository.collection.UpdateByID(contextValue, customerIdentifier, bson.M{"$set": setFields})
}

func (repository *CustomerRepository) DeleteByID(
	contextValue context.Context,
	customerIdentifier string,
) (_ int64, returnedError error) {
	return repository.collection.DeleteByID(contextValue, customerIdentifier)
}

func (repository *CustomerRepository) Count(
	contextValue context.Context,
) (_ int64, returnedError error) {
	return repository.collection.Count(contextValue, nil)
}
