// Package worker maintains a local replica of the primary store. It consumes
// expense events and replays them into a sqlite mirror, so reporting and
// backups do not touch the hosted backend.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"outlay/internal/amqp"
	"outlay/internal/core"
	"outlay/internal/store"
)

// MirrorStore is the replica side. The sqlite store implements it.
type MirrorStore interface {
	UpsertExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error
	Expenses(ctx context.Context, userID string) ([]core.Expense, error)
}

// PrimaryReader is the subset of the primary store the worker re-reads rows
// from when replaying events.
type PrimaryReader interface {
	Expense(ctx context.Context, userID, id string) (core.Expense, error)
	Expenses(ctx context.Context, userID string) ([]core.Expense, error)
}

// MirrorWorker replays expense events from the primary store into the
// replica. Events carry ids only; the worker always fetches current state,
// so replays and reordering converge.
type MirrorWorker struct {
	primary PrimaryReader
	mirror  MirrorStore
}

func NewMirrorWorker(primary PrimaryReader, mirror MirrorStore) *MirrorWorker {
	return &MirrorWorker{primary: primary, mirror: mirror}
}

// HandleEvent processes a single expense event. Returning an error requeues
// the delivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	switch event.Kind {
	case amqp.EventExpenseCreated:
		return w.mirrorCreate(ctx, event)
	case amqp.EventExpenseDeleted:
		return w.mirrorDelete(ctx, event)
	default:
		// Drop rather than requeue: an unknown kind never becomes known.
		slog.WarnContext(ctx, "Skipping event of unknown kind", "kind", event.Kind)
		return nil
	}
}

func (w *MirrorWorker) mirrorCreate(ctx context.Context, event *amqp.ExpenseEvent) error {
	expense, err := w.primary.Expense(ctx, event.UserID, event.ExpenseID)
	if errors.Is(err, store.ErrNotFound) {
		// Created then deleted before we got here. The delete event will
		// clean up the mirror; nothing to write.
		slog.InfoContext(ctx, "Expense gone from primary, skipping mirror write",
			"expense_id", event.ExpenseID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read expense from primary: %w", err)
	}

	if err := w.mirror.UpsertExpense(ctx, expense); err != nil {
		return fmt.Errorf("mirror expense: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored expense",
		"expense_id", expense.ID,
		"amount_cents", expense.Amount.Cents)
	return nil
}

func (w *MirrorWorker) mirrorDelete(ctx context.Context, event *amqp.ExpenseEvent) error {
	err := w.mirror.DeleteExpense(ctx, event.UserID, event.ExpenseID)
	if errors.Is(err, store.ErrNotFound) {
		// Already absent; the mirror is where the event wanted it.
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete mirrored expense: %w", err)
	}

	slog.InfoContext(ctx, "Removed mirrored expense", "expense_id", event.ExpenseID)
	return nil
}

// Reconcile does a full sweep for one user, upserting every primary row and
// deleting mirror rows the primary no longer has. Recovers from lost events
// and worker downtime.
func (w *MirrorWorker) Reconcile(ctx context.Context, userID string) error {
	primary, err := w.primary.Expenses(ctx, userID)
	if err != nil {
		return fmt.Errorf("read primary expenses: %w", err)
	}
	mirrored, err := w.mirror.Expenses(ctx, userID)
	if err != nil {
		return fmt.Errorf("read mirrored expenses: %w", err)
	}

	want := make(map[string]bool, len(primary))
	upserts := 0
	for _, e := range primary {
		want[e.ID] = true
		if err := w.mirror.UpsertExpense(ctx, e); err != nil {
			return fmt.Errorf("reconcile upsert %s: %w", e.ID, err)
		}
		upserts++
	}

	removals := 0
	for _, e := range mirrored {
		if want[e.ID] {
			continue
		}
		if err := w.mirror.DeleteExpense(ctx, userID, e.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("reconcile delete %s: %w", e.ID, err)
		}
		removals++
	}

	slog.InfoContext(ctx, "Reconciled mirror",
		"user_id", userID,
		"upserts", upserts,
		"removals", removals,
		"at", time.Now().Format(time.RFC3339))
	return nil
}
