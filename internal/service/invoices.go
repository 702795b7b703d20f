package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/mongodb/repository"
	"billstack/internal/database/tenant"
	tenantRepo "billstack/internal/database/tenant/repository"
	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type InvoiceService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	directory   TenantDirectory
	tenantsRepo *repository.TenantsRepository
}

func NewInvoiceService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	directory TenantDirectory,
	tenantsRepo *repository.TenantsRepository,
) *InvoiceService {
	return &InvoiceService{
		trace:       trace,
		logger:      logger,
		directory:   directory,
		tenantsRepo: tenantsRepo,
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func sameState(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// calculateInvoiceTotals 稅額計算。賣方註冊州與買方州一致時
// 稅額對半拆成 CGST+SGST，跨州整筆走 IGST；
// 總額進位到整數盧比，差額記在 roundOff。
func calculateInvoiceTotals(
	items []model.InvoiceItem,
	sellerState string,
	buyerState string,
) (subtotal, cgst, sgst, igst, roundOff, total float64) {

	var tax float64
	for _, item := range items {
		subtotal += item.Amount
		tax += item.Amount * item.GSTRate / 100
	}
	subtotal = round2(subtotal)

	if sameState(sellerState, buyerState) {
		cgst = round2(tax / 2)
		sgst = round2(tax / 2)
	} else {
		igst = round2(tax)
	}

	raw := subtotal + cgst + sgst + igst
	total = math.Round(raw)
	roundOff = round2(total - raw)
	return subtotal, cgst, sgst, igst, roundOff, total
}

// Create 開發票：驗月上限 → 組品項（鎖定當下單價稅率）→
// 算稅 → 落庫 → 扣庫存 → 記用量
func (s *InvoiceService) Create(
	ctx context.Context,
	handle *tenant.Handle,
	tenantKey string,
	createDto *dto.CreateInvoiceDto,
) (_ *model.Invoice, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	tenantDoc, err := s.directory.GetBySubdomain(ctx, tenantKey)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.TenantUnavailable(fmt.Sprintf("tenant %q not found", tenantKey))
		}
		return nil, cErr.DatabaseError("database GetBySubdomain error")
	}
	if tenantDoc.Limits.MaxInvoicesPerMonth > 0 &&
		tenantDoc.Usage.InvoicesThisMonth >= tenantDoc.Limits.MaxInvoicesPerMonth {
		return nil, cErr.Forbidden("monthly invoice limit reached, upgrade the plan")
	}

	customers := tenantRepo.NewCustomerRepository(handle)
	customer, err := customers.GetByID(ctx, createDto.CustomerID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, cErr.NotFound("customer not found")
		}
		return nil, cErr.DatabaseError("database GetByID customer error")
	}

	products := tenantRepo.NewProductRepository(handle)
	items := make([]model.InvoiceItem, 0, len(createDto.Items))
	for _, itemDto := range createDto.Items {
		product, err := products.GetByID(ctx, itemDto.ProductID)
		if err != nil {
			if errors.Is(err, tenant.ErrNotFound) {
				return nil, cErr.NotFound(fmt.Sprintf("product %s not found", itemDto.ProductID))
			}
			return nil, cErr.DatabaseError("database GetByID product error")
		}
		if product.Stock < itemDto.Quantity {
			return nil, cErr.StockInsufficient(fmt.Sprintf("product %q has %d in stock", product.Name, product.Stock))
		}
		items = append(items, model.InvoiceItem{
			ProductID: itemDto.ProductID,
			Name:      product.Name,
			Quantity:  itemDto.Quantity,
			Price:     product.Price,
			GSTRate:   product.GSTRate,
			Amount:    round2(product.Price * float64(itemDto.Quantity)),
		})
	}

	subtotal, cgst, sgst, igst, roundOff, total := calculateInvoiceTotals(items, tenantDoc.State, customer.State)

	invoices := tenantRepo.NewInvoiceRepository(handle)
	now := time.Now().UTC()
	// 以年度序列發號：原子遞增，併發開票不會撞號
	sequence, err := invoices.NextSequence(ctx, fmt.Sprintf("invoices-%d", now.Year()))
	if err != nil {
		return nil, cErr.DatabaseError("database NextSequence invoices error")
	}
	invoice := &model.Invoice{
		Number:        fmt.Sprintf("INV-%d-%05d", now.Year(), sequence),
		CustomerID:    createDto.CustomerID,
		CustomerName:  customer.Name,
		CustomerState: customer.State,
		Items:         items,
		Subtotal:      subtotal,
		CGST:          cgst,
		SGST:          sgst,
		IGST:          igst,
		RoundOff:      roundOff,
		Total:         total,
		Status:        core.InvoiceDraft,
		IssuedAt:      now,
		DueAt:         createDto.DueAt,
	}
	invoiceID, err := invoices.Create(ctx, invoice)
	if err != nil {
		return nil, cErr.DatabaseError("database Create invoice error")
	}
	if oid, parseError := tenant.ParseObjectID(invoiceID); parseError == nil {
		invoice.ID = oid
	}

	for _, item := range items {
		if _, err := products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to decrement stock",
				zap.String("tenantKey", tenantKey),
				zap.String("productId", item.ProductID),
				zap.Error(err),
			)
		}
	}
	if _, err := s.tenantsRepo.IncrementUsage(ctx, tenantDoc.ID, "usage.invoicesThisMonth", 1); err != nil {
		s.logger.Error("failed to increment invoice usage",
			zap.String("tenantKey", tenantKey),
			zap.Error(err),
		)
	}

	return invoice, nil
}

func (s *InvoiceService) List(
	ctx context.Context,
	handle *tenant.Handle,
	status core.InvoiceStatus,
) (_ []*model.Invoice, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	invoices, err := tenantRepo.NewInvoiceRepository(handle).List(ctx, status)
	if err != nil {
		return nil, cErr.DatabaseError("database List invoices error")
	}
	return invoices, nil
}

func (s *InvoiceService) GetByID(
	ctx context.Context,
	handle *tenant.Handle,
	invoiceID string,
) (_ *model.Invoice, returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	invoice, err := tenantRepo.NewInvoiceRepository(handle).GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, cErr.NotFound("invoice not found")
		}
		return nil, cErr.DatabaseError("database GetByID invoice error")
	}
	return invoice, nil
}

// invoiceTransitions 狀態機：draft → sent → paid，cancelled 可從
// 任一非終點狀態進入；paid 與 cancelled 是終點。
var invoiceTransitions = map[core.InvoiceStatus][]core.InvoiceStatus{
	core.InvoiceDraft: {core.InvoiceSent, core.InvoiceCancelled},
	core.InvoiceSent:  {core.InvoicePaid, core.InvoiceCancelled},
}

func canTransition(from, to core.InvoiceStatus) bool {
	for _, next := range invoiceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus 只接受狀態機允許的轉移
func (s *InvoiceService) UpdateStatus(
	ctx context.Context,
	handle *tenant.Handle,
	invoiceID string,
	status core.InvoiceStatus,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	invoices := tenantRepo.NewInvoiceRepository(handle)
	invoice, err := invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return cErr.NotFound("invoice not found")
		}
		return cErr.DatabaseError("database GetByID invoice error")
	}
	if !canTransition(invoice.Status, status) {
		return cErr.InvoiceStatusError(fmt.Sprintf("cannot move a %s invoice to %s", invoice.Status, status))
	}

	if _, err := invoices.UpdateByID(ctx, invoiceID, bson.M{"status": status}); err != nil {
		return cErr.DatabaseError("database UpdateByID invoice error")
	}
	return nil
}

// Delete 只允許刪草稿與已取消的發票
func (s *InvoiceService) Delete(
	ctx context.Context,
	handle *tenant.Handle,
	invoiceID string,
) (returnedError error) {

	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	invoices := tenantRepo.NewInvoiceRepository(handle)
	invoice, err := invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return cErr.NotFound("invoice not found")
		}
		return cErr.DatabaseError("database GetByID invoice error")
	}
	if invoice.Status != core.InvoiceDraft && invoice.Status != core.InvoiceCancelled {
		return cErr.InvoiceStatusError(fmt.Sprintf("cannot delete a %s invoice", invoice.Status))
	}

	if _, err := invoices.DeleteByID(ctx, invoiceID); err != nil {
		return cErr.DatabaseError("database DeleteByID invoice error")
	}
	return nil
}
