package repository

import (
	"context"
	"time"

	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/tenant"

	"go.mongodb.org/mongo-driver/bson"
)

type ProductRepository struct {
	collection tenant.Collection
}

func NewProductRepository(handle *tenant.Handle) *ProductRepository {
	return &ProductRepository{
		collection: handle.Collection(core.TenantCollectionProducts),
	}
}

func (repository *ProductRepository) Create(
	contextValue context.Context,
	product *model.Product,
) (_ string, returnedError error) {

	nowUTC := time.Now().UTC()
	product.CreatedAt = nowUTC
	product.UpdatedAt = nowUTC
	return repository.collection.InsertOne(contextValue, product)
}

func (repository *ProductRepository) GetByID(
	contextValue context.Context,
	productIdentifier string,
) (_ *model.Product, returnedError error) {

	objectID, parseError := tenant.ParseObjectID(productIdentifier)
	if parseError != nil {
		return nil, parseError
	}
	var product model.Product
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": objectID}, nil, &product); returnedError != nil {
		return nil, returnedError
	}
	return &product, nil
}

func (repository *ProductRepository) List(
	contextValue context.Context,
) (_ []*model.Product, returnedError error) {

	var products []*model.Product
	if returnedError = repository.collection.FindAll(contextValue, nil, &products); returnedError != nil {
		return nil, returnedError
	}
	return products, nil
}

func (repository *ProductRepository) UpdateByID(
	contextValue context.Context,
	productIdentifier string,
	setFields bson.M,
) (_ int64, returnedError error) {

	setFields["updatedAt"] = time.Now().UTC()
	return repository.collection.UpdateByID(contextValue, productIdentifier, bson.M{"$set": setFields})
}

// DecrementStock 開發票扣庫存；quantity 為正數
func (repository *ProductRepository) DecrementStock(
	contextValue context.Context,
	productIdentifier string,
	quantity int64,
) (_ int64, returnedError error) {

	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return repository.collection.UpdateByID(contextValue, productIdentifier, update)
}

func (repository *ProductRepository) DeleteByID(
	contextValue context.Context,
	productIdentifier string,
) (_ int64, returnedError error) {
	return repository.collection.DeleteByID(contextValue, productIdentifier)
}

func (repository *ProductRepository) Count(
	contextValue context.Context,
) (_ int64, returnedError error) {
	return repository.collection.Count(contextValue, nil)
}
