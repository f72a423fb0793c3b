package worker

import (
	"context"
	"testing"
	"time"

	"outlay/internal/amqp"
	"outlay/internal/core"
	"outlay/internal/store"
	"outlay/internal/store/memory"
)

type fakeMirror struct {
	rows map[string]core.Expense
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{rows: make(map[string]core.Expense)}
}

func (f *fakeMirror) UpsertExpense(ctx context.Context, e core.Expense) error {
	f.rows[e.ID] = e
	return nil
}

func (f *fakeMirror) DeleteExpense(ctx context.Context, userID, id string) error {
	e, ok := f.rows[id]
	if !ok || e.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeMirror) Expenses(ctx context.Context, userID string) ([]core.Expense, error) {
	var out []core.Expense
	for _, e := range f.rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func seedExpense(t *testing.T, primary *memory.Store, title string) core.Expense {
	t.Helper()
	e, err := primary.CreateExpense(context.Background(), core.Expense{
		UserID: "u1", Title: title,
		Amount:    core.Money{Cents: 1000},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	return e
}

func TestHandleCreatedEvent(t *testing.T) {
	primary := memory.New()
	mirror := newFakeMirror()
	w := NewMirrorWorker(primary, mirror)
	ctx := context.Background()

	e := seedExpense(t, primary, "Groceries")

	event := amqp.NewExpenseEvent(amqp.EventExpenseCreated, "u1", e.ID)
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent() error: %v", err)
	}
	if got, ok := mirror.rows[e.ID]; !ok || got.Title != "Groceries" {
		t.Errorf("mirror row = %+v, %v", got, ok)
	}

	// Replaying the same event is a no-op, not a duplicate.
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent() replay error: %v", err)
	}
	if len(mirror.rows) != 1 {
		t.Errorf("mirror has %d rows after replay, want 1", len(mirror.rows))
	}
}

func TestHandleCreatedEventForVanishedExpense(t *testing.T) {
	primary := memory.New()
	mirror := newFakeMirror()
	w := NewMirrorWorker(primary, mirror)

	// The expense was deleted from the primary before the worker caught up.
	event := amqp.NewExpenseEvent(amqp.EventExpenseCreated, "u1", "gone")
	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent() should skip a vanished expense: %v", err)
	}
	if len(mirror.rows) != 0 {
		t.Errorf("mirror rows = %d, want 0", len(mirror.rows))
	}
}

func TestHandleDeletedEvent(t *testing.T) {
	primary := memory.New()
	mirror := newFakeMirror()
	w := NewMirrorWorker(primary, mirror)
	ctx := context.Background()

	mirror.rows["e1"] = core.Expense{ID: "e1", UserID: "u1", Title: "x", Amount: core.Money{Cents: 1}}

	event := amqp.NewExpenseEvent(amqp.EventExpenseDeleted, "u1", "e1")
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent() error: %v", err)
	}
	if len(mirror.rows) != 0 {
		t.Errorf("mirror row survived delete")
	}

	// Deleting an absent row is fine; the mirror already agrees.
	if err := w.HandleEvent(ctx, event); err != nil {
		t.Fatalf("HandleEvent() on absent row error: %v", err)
	}
}

func TestReconcile(t *testing.T) {
	primary := memory.New()
	mirror := newFakeMirror()
	w := NewMirrorWorker(primary, mirror)
	ctx := context.Background()

	kept := seedExpense(t, primary, "Kept")
	// Stale row the primary no longer has.
	mirror.rows["stale"] = core.Expense{ID: "stale", UserID: "u1", Title: "Old", Amount: core.Money{Cents: 1}}

	if err := w.Reconcile(ctx, "u1"); err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}

	if _, ok := mirror.rows[kept.ID]; !ok {
		t.Error("primary row missing from mirror after reconcile")
	}
	if _, ok := mirror.rows["stale"]; ok {
		t.Error("stale row survived reconcile")
	}
}
