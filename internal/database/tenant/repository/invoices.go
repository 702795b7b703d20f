package repository

import (
	"context"
	"time"

	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/tenant"

	"go.mongodb.org/mongo-driver/bson"
)

type InvoiceRepository struct {
	collection tenant.Collection
	counters   tenant.Collection
}

func NewInvoiceRepository(handle *tenant.Handle) *InvoiceRepository {
	return &InvoiceRepository{
		collection: handle.Collection(core.TenantCollectionInvoices),
		counters:   handle.Collection(core.TenantCollectionCounters),
	}
}

// NextSequence 發票流水號：counters 集合上的原子遞增，
// 刪除發票不會讓號碼回收或重複。
func (repository *InvoiceRepository) NextSequence(
	contextValue context.Context,
	name string,
) (_ int64, returnedError error) {
	return repository.counters.NextSequence(contextValue, name)
}

func (repository *InvoiceRepository) Create(
	contextValue context.Context,
	invoice *model.Invoice,
) (_ string, returnedError error) {

	nowUTC := time.Now().UTC()
	invoice.CreatedAt = nowUTC
	invoice.UpdatedAt = nowUTC
	return repository.collection.InsertOne(contextValue, invoice)
}

func (repository *InvoiceRepository) GetByID(
	contextValue context.Context,
	invoiceIdentifier string,
) (_ *model.Invoice, returnedError error) {

	objectID, parseError := tenant.ParseObjectID(invoiceIdentifier)
	if parseError != nil {
		return nil, parseError
	}
	var invoice model.Invoice
	if returnedError = repository.collection.FindOne(contextValue, bson.M{"_id": objectID}, nil, &invoice); returnedError != nil {
		return nil, returnedError
	}
	return &invoice, nil
}

// List 可選擇依狀態過濾
func (repository *InvoiceRepository) List(
	contextValue context.Context,
	status core.InvoiceStatus,
) (_ []*model.Invoice, returnedError error) {

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	var invoices []*model.Invoice
	if returnedError = repository.collection.FindAll(contextValue, filter, &invoices); returnedError != nil {
		return nil, returnedError
	}
	return invoices, nil
}

func (repository *InvoiceRepository) UpdateByID(
	contextValue context.Context,
	invoiceIdentifier string,
	setFields bson.M,
) (_ int64, returnedError error) {

	setFields["updatedAt"] = time.Now().UTC()
	return repository.collection.UpdateByID(contextValue, invoiceIdentifier, bson.M{"$set": setFields})
}

func (repository *InvoiceRepository) DeleteByID(
	contextValue context.Context,
	invoiceIdentifier string,
) (_ int64, returnedError error) {
	return repository.collection.DeleteByID(contextValue, invoiceIdentifier)
}

func (repository *InvoiceRepository) Count(
	contextValue context.Context,
	filter bson.M,
) (_ int64, returnedError error) {
	if filter == nil {
		filter = bson.M{}
	}
	return repository.collection.Count(contextValue, filter)
}
