package services

import (
	"context"
	"errors"
	"testing"

	"outlay/internal/amqp"
	"outlay/internal/core"
	"outlay/internal/store"
	"outlay/internal/store/memory"
)

type fakePublisher struct {
	events []*amqp.ExpenseEvent
	err    error
}

func (f *fakePublisher) PublishExpenseEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func TestExpenseCreatePublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", "Groceries", "42,50", "c1")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.Amount.Cents != 4250 {
		t.Errorf("amount = %d, want 4250", created.Amount.Cents)
	}
	if created.CreatedAt.IsZero() {
		t.Error("created expense has no timestamp")
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	e := pub.events[0]
	if e.Kind != amqp.EventExpenseCreated || e.ExpenseID != created.ID || e.UserID != "u1" {
		t.Errorf("event = %+v", e)
	}
}

func TestExpenseCreateRejectsBadAmount(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(memory.New(), pub)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		if _, err := svc.Create(context.Background(), "u1", "x", bad, "c1"); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("Create(amount=%q) = %v, want ErrInvalidAmount", bad, err)
		}
	}
	if len(pub.events) != 0 {
		t.Errorf("events published for rejected input: %d", len(pub.events))
	}
}

func TestExpenseCreateRequiresCategory(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(memory.New(), pub)

	for _, id := range []string{"", "   "} {
		if _, err := svc.Create(context.Background(), "u1", "Groceries", "10", id); !errors.Is(err, core.ErrMissingCategory) {
			t.Errorf("Create(category=%q) = %v, want ErrMissingCategory", id, err)
		}
	}
	if len(pub.events) != 0 {
		t.Errorf("events published for rejected input: %d", len(pub.events))
	}
}

func TestExpenseCreateSurvivesPublisherFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	st := memory.New()
	svc := NewExpenseService(st, pub)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", "Groceries", "10", "c1")
	if err != nil {
		t.Fatalf("Create() should not fail when publish fails: %v", err)
	}
	if _, err := st.Expense(ctx, "u1", created.ID); err != nil {
		t.Errorf("expense not persisted: %v", err)
	}
}

func TestExpenseDelete(t *testing.T) {
	pub := &fakePublisher{}
	st := memory.New()
	svc := NewExpenseService(st, pub)
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", "Groceries", "10", "c1")
	pub.events = nil

	if err := svc.Delete(ctx, "u1", created.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Kind != amqp.EventExpenseDeleted {
		t.Errorf("events after delete = %+v", pub.events)
	}

	// Failed deletes publish nothing.
	pub.events = nil
	if err := svc.Delete(ctx, "u1", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete(missing) = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("event published for failed delete")
	}
}

func TestExpenseServiceNilPublisher(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil)

	if _, err := svc.Create(context.Background(), "u1", "Groceries", "10", "c1"); err != nil {
		t.Fatalf("Create() with nil publisher error: %v", err)
	}
}
