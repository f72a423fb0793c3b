// Package services sits between the HTTP layer and the store. Services own
// input parsing, validation and event publishing; handlers own rendering.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"outlay/internal/amqp"
	"outlay/internal/core"
	"outlay/internal/store"
)

// EventPublisher pushes mutation events into the mirror pipeline. The AMQP
// client implements it; a nil publisher disables mirroring.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event *amqp.ExpenseEvent) error
}

// ExpenseService orchestrates expense operations across the store and the
// event pipeline.
type ExpenseService struct {
	store     store.Store
	publisher EventPublisher
}

func NewExpenseService(st store.Store, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{store: st, publisher: publisher}
}

// Create parses the submitted amount, persists the expense and publishes a
// created event. Publishing is best effort: the expense is saved either way.
// A category is required at creation time; expenses only lose their category
// when it is deleted later.
func (s *ExpenseService) Create(ctx context.Context, userID, title, amount, categoryID string) (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Expense{}, err
	}
	if strings.TrimSpace(categoryID) == "" {
		return core.Expense{}, core.ErrMissingCategory
	}

	expense := core.Expense{
		UserID:     userID,
		Title:      title,
		Amount:     core.Money{Cents: cents},
		CreatedAt:  time.Now().UTC(),
		CategoryID: categoryID,
	}

	created, err := s.store.CreateExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventExpenseCreated, userID, created.ID))

	return created, nil
}

// Delete removes an expense and publishes a deleted event.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventExpenseDeleted, userID, id))

	return nil
}

// List returns the user's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.store.Expenses(ctx, userID)
}

func (s *ExpenseService) publish(ctx context.Context, event *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, event); err != nil {
		// The store write already succeeded; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"kind", event.Kind,
			"expense_id", event.ExpenseID,
			"error", err)
	}
}
