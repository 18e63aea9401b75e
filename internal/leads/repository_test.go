package leads

import (
	"context"
	"testing"
)

func TestInMemoryCreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()

	lead, err := repo.Create(context.Background(), &CreateLeadRequest{
		Name:    "John Smith",
		Phone:   "954-555-1234",
		Service: "Painting",
		Message: "I need a quote",
		Source:  "chatbot",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.ID == "" {
		t.Fatal("expected generated id")
	}
	if lead.Status != StatusNew {
		t.Fatalf("expected status new, got %s", lead.Status)
	}

	got, err := repo.GetByID(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "John Smith" || got.Service != "Painting" {
		t.Fatalf("unexpected lead: %+v", got)
	}
}

func TestInMemoryCreateValidates(t *testing.T) {
	repo := NewInMemoryRepository()

	if _, err := repo.Create(context.Background(), &CreateLeadRequest{Phone: "954-555-1234"}); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := repo.Create(context.Background(), &CreateLeadRequest{Name: "Jane"}); err != ErrMissingContact {
		t.Fatalf("expected ErrMissingContact, got %v", err)
	}
}

func TestInMemoryListFiltersByStatus(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first, _ := repo.Create(ctx, &CreateLeadRequest{Name: "A", Phone: "9545550001", Source: "chatbot"})
	repo.Create(ctx, &CreateLeadRequest{Name: "B", Phone: "9545550002", Source: "contact_form"})

	if err := repo.UpdateStatus(ctx, first.ID, StatusContacted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	contacted, err := repo.List(ctx, ListLeadsFilter{Status: StatusContacted})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(contacted) != 1 || contacted[0].ID != first.ID {
		t.Fatalf("expected only the contacted lead, got %+v", contacted)
	}

	all, err := repo.List(ctx, ListLeadsFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(all))
	}
}

func TestInMemoryUpdateStatusRejectsUnknown(t *testing.T) {
	repo := NewInMemoryRepository()
	lead, _ := repo.Create(context.Background(), &CreateLeadRequest{Name: "A", Phone: "9545550001"})

	if err := repo.UpdateStatus(context.Background(), lead.ID, "vip"); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := repo.UpdateStatus(context.Background(), "missing", StatusClosed); err != ErrLeadNotFound {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}
