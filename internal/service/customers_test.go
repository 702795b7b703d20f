package service

import (
	"context"
	"testing"

	"billstack/internal/dto"
	cErr "billstack/internal/pkg/error"
)

func strPtr(value string) *string { return &value }

func TestCustomerCRUD(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	customerService := NewCustomerService(newTestTrace(t))

	created, err := customerService.Create(context.Background(), handle, &dto.CreateCustomerDto{
		Name:  "Ravi Traders",
		Email: "ravi@example.com",
		State: "Karnataka",
		GSTIN: "29ABCDE1234F1Z5",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected assigned customer id")
	}

	fetched, err := customerService.GetByID(context.Background(), handle, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Name != "Ravi Traders" || fetched.State != "Karnataka" {
		t.Fatalf("unexpected customer %+v", fetched)
	}

	if err := customerService.UpdateByID(context.Background(), handle, created.ID.Hex(), &dto.UpdateCustomerDto{
		State: strPtr("Kerala"),
	}); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	fetched, err = customerService.GetByID(context.Background(), handle, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if fetched.State != "Kerala" {
		t.Fatalf("expected Kerala, got %s", fetched.State)
	}

	customers, err := customerService.List(context.Background(), handle)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(customers))
	}

	if err := customerService.DeleteByID(context.Background(), handle, created.ID.Hex()); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	_, err = customerService.GetByID(context.Background(), handle, created.ID.Hex())
	assertErrorCode(t, err, cErr.NOT_FOUND)
}

func TestCustomerUpdateRequiresFields(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	customerService := NewCustomerService(newTestTrace(t))

	err := customerService.UpdateByID(context.Background(), handle, "64f000000000000000000000", &dto.UpdateCustomerDto{})
	assertErrorCode(t, err, cErr.BAD_REQUEST_BODY)
}

func TestCustomerUpdateUnknownID(t *testing.T) {
	connector := newMemConnector()
	handle := acquireTestHandle(t, connector, "acme")
	customerService := NewCustomerService(newTestTrace(t))

	err := customerService.UpdateByID(context.Background(), handle, "64f000000000000000000000", &dto.UpdateCustomerDto{
		Name: strPtr("Ghost"),
	})
	assertErrorCode(t, err, cErr.NOT_FOUND)
}
