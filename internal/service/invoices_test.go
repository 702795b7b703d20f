package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"billstack/internal/core"
	"billstack/internal/database/mongodb/model"
	"billstack/internal/database/tenant"
	tenantRepo "billstack/internal/database/tenant/repository"
	cErr "billstack/internal/pkg/error"

	"go.uber.org/zap"
)

func approx(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s: expected %.2f, got %.6f", label, want, got)
	}
}

func TestCalculateInvoiceTotalsIntraState(t *testing.T) {
	items := []model.InvoiceItem{
		{Amount: 1000, GSTRate: 18},
	}
	subtotal, cgst, sgst, igst, roundOff, total := calculateInvoiceTotals(items, "Karnataka", "Karnataka")

	approx(t, "subtotal", subtotal, 1000)
	approx(t, "cgst", cgst, 90)
	approx(t, "sgst", sgst, 90)
	approx(t, "igst", igst, 0)
	approx(t, "roundOff", roundOff, 0)
	approx(t, "total", total, 1180)
}

func TestCalculateInvoiceTotalsInterState(t *testing.T) {
	items := []model.InvoiceItem{
		{Amount: 1000, GSTRate: 18},
	}
	subtotal, cgst, sgst, igst, roundOff, total := calculateInvoiceTotals(items, "Karnataka", "Kerala")

	approx(t, "subtotal", subtotal, 1000)
	approx(t, "cgst", cgst, 0)
	approx(t, "sgst", sgst, 0)
	approx(t, "igst", igst, 180)
	approx(t, "roundOff", roundOff, 0)
	approx(t, "total", total, 1180)
}

func TestCalculateInvoiceTotalsRoundOff(t *testing.T) {
	items := []model.InvoiceItem{
		{Amount: 999.50, GSTRate: 18},
	}
	_, _, _, igst, roundOff, total := calculateInvoiceTotals(items, "Karnataka", "Kerala")

	approx(t, "igst", igst, 179.91)
	approx(t, "total", total, 1179)
	approx(t, "roundOff", roundOff, -0.41)
}

func TestCalculateInvoiceTotalsMixedRates(t *testing.T) {
	items := []model.InvoiceItem{
		{Amount: 500, GSTRate: 18},
		{Amount: 200, GSTRate: 5},
	}
	subtotal, cgst, sgst, _, _, total := calculateInvoiceTotals(items, "Karnataka", "karnataka")

	// 州別比對不分大小寫，仍走州內拆分
	approx(t, "subtotal", subtotal, 700)
	approx(t, "cgst", cgst, 50)
	approx(t, "sgst", sgst, 50)
	approx(t, "total", total, 800)
}

func TestCalculateInvoiceTotalsStateNormalization(t *testing.T) {
	items := []model.InvoiceItem{{Amount: 100, GSTRate: 18}}

	_, cgst, sgst, igst, _, _ := calculateInvoiceTotals(items, " Karnataka ", "KARNATAKA")
	approx(t, "cgst", cgst, 9)
	approx(t, "sgst", sgst, 9)
	approx(t, "igst", igst, 0)
}

func acquireTestHandle(t *testing.T, connector *memConnector, tenantKey string) *tenant.Handle {
	t.Helper()
	registry := newTestRegistry(t, connector)
	handle, err := registry.Acquire(context.Background(), tenantKey)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	return handle
}

func seedInvoice(t *testing.T, handle *tenant.Handle, status core.InvoiceStatus) string {
	t.Helper()
	invoiceID, err := tenantRepo.NewInvoiceRepository(handle).Create(context.Background(), &model.Invoice{
		Number: "INV-2026-00001",
		Status: status,
		Total:  1180,
	})
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return invoiceID
}

func newTestInvoiceService(t *testing.T) *InvoiceService {
	t.Helper()
	return NewInvoiceService(newTestTrace(t), zap.NewNop(), &fakeDirectory{}, nil)
}

func TestInvoiceSequenceNeverRepeats(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	invoices := tenantRepo.NewInvoiceRepository(handle)

	const creators = 16
	sequences := make([]int64, creators)
	var wg sync.WaitGroup
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			sequence, err := invoices.NextSequence(context.Background(), "invoices-2026")
			if err != nil {
				t.Errorf("NextSequence: %v", err)
				return
			}
			sequences[index] = sequence
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, creators)
	for _, sequence := range sequences {
		if seen[sequence] {
			t.Fatalf("duplicate invoice sequence %d", sequence)
		}
		seen[sequence] = true
	}

	// 序列只前進：之後的取號不會因為刪除或計數落差而回頭
	next, err := invoices.NextSequence(context.Background(), "invoices-2026")
	if err != nil {
		t.Fatalf("NextSequence: %v", err)
	}
	if next != creators+1 {
		t.Fatalf("expected sequence %d, got %d", creators+1, next)
	}
}

func TestUpdateStatusDraftToSent(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	invoiceID := seedInvoice(t, handle, core.InvoiceDraft)
	invoiceService := newTestInvoiceService(t)

	if err := invoiceService.UpdateStatus(context.Background(), handle, invoiceID, core.InvoiceSent); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	invoice, err := invoiceService.GetByID(context.Background(), handle, invoiceID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if invoice.Status != core.InvoiceSent {
		t.Fatalf("expected sent, got %s", invoice.Status)
	}
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	invoiceService := newTestInvoiceService(t)

	// draft 不能跳過 sent 直接收款
	draftID := seedInvoice(t, handle, core.InvoiceDraft)
	err := invoiceService.UpdateStatus(context.Background(), handle, draftID, core.InvoicePaid)
	assertErrorCode(t, err, cErr.INVOICE_STATUS_ERROR)

	// sent → paid 與 draft → cancelled 都是合法轉移
	sentID := seedInvoice(t, handle, core.InvoiceSent)
	if err := invoiceService.UpdateStatus(context.Background(), handle, sentID, core.InvoicePaid); err != nil {
		t.Fatalf("sent to paid should be allowed: %v", err)
	}
	if err := invoiceService.UpdateStatus(context.Background(), handle, draftID, core.InvoiceCancelled); err != nil {
		t.Fatalf("draft to cancelled should be allowed: %v", err)
	}
}

func TestUpdateStatusTerminalStatesAreFinal(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	invoiceService := newTestInvoiceService(t)

	for _, terminal := range []core.InvoiceStatus{core.InvoicePaid, core.InvoiceCancelled} {
		invoiceID := seedInvoice(t, handle, terminal)
		err := invoiceService.UpdateStatus(context.Background(), handle, invoiceID, core.InvoiceSent)
		assertErrorCode(t, err, cErr.INVOICE_STATUS_ERROR)
	}
}

func TestDeleteOnlyDraftOrCancelled(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	invoiceService := newTestInvoiceService(t)

	draftID := seedInvoice(t, handle, core.InvoiceDraft)
	if err := invoiceService.Delete(context.Background(), handle, draftID); err != nil {
		t.Fatalf("Delete draft: %v", err)
	}

	cancelledID := seedInvoice(t, handle, core.InvoiceCancelled)
	if err := invoiceService.Delete(context.Background(), handle, cancelledID); err != nil {
		t.Fatalf("Delete cancelled: %v", err)
	}

	sentID := seedInvoice(t, handle, core.InvoiceSent)
	err := invoiceService.Delete(context.Background(), handle, sentID)
	assertErrorCode(t, err, cErr.INVOICE_STATUS_ERROR)

	paidID := seedInvoice(t, handle, core.InvoicePaid)
	err = invoiceService.Delete(context.Background(), handle, paidID)
	assertErrorCode(t, err, cErr.INVOICE_STATUS_ERROR)
}

func TestListFiltersByStatus(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	invoiceService := newTestInvoiceService(t)

	seedInvoice(t, handle, core.InvoiceDraft)
	seedInvoice(t, handle, core.InvoiceSent)
	seedInvoice(t, handle, core.InvoiceSent)

	sent, err := invoiceService.List(context.Background(), handle, core.InvoiceSent)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("expected 2 sent invoices, got %d", len(sent))
	}

	all, err := invoiceService.List(context.Background(), handle, "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 invoices, got %d", len(all))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	invoiceService := newTestInvoiceService(t)

	_, err := invoiceService.GetByID(context.Background(), handle, "64f000000000000000000000")
	assertErrorCode(t, err, cErr.NOT_FOUND)
}
