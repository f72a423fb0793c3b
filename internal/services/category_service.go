package services

import (
	"context"
	"strings"

	"outlay/internal/core"
	"outlay/internal/store"
)

// CategoryService owns category CRUD including the bulk wipe behind the
// two-phase confirmation.
type CategoryService struct {
	store store.Store
}

func NewCategoryService(st store.Store) *CategoryService {
	return &CategoryService{store: st}
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]core.Category, error) {
	return s.store.Categories(ctx, userID)
}

// Create parses the submitted budget and persists the category. A zero
// budget is allowed; its progress bar just stays empty.
func (s *CategoryService) Create(ctx context.Context, userID, name, budget string) (core.Category, error) {
	cents, err := core.ParseBudgetToCents(budget)
	if err != nil {
		return core.Category{}, err
	}

	return s.store.CreateCategory(ctx, core.Category{
		UserID: userID,
		Name:   strings.TrimSpace(name),
		Budget: core.Money{Cents: cents},
	})
}

func (s *CategoryService) Update(ctx context.Context, userID, id, name, budget string) error {
	cents, err := core.ParseBudgetToCents(budget)
	if err != nil {
		return err
	}

	return s.store.UpdateCategory(ctx, core.Category{
		ID:     id,
		UserID: userID,
		Name:   strings.TrimSpace(name),
		Budget: core.Money{Cents: cents},
	})
}

// Delete removes one category. The store detaches any expenses that
// referenced it; the expenses themselves survive.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	return s.store.DeleteCategory(ctx, userID, id)
}

// DeleteAll wipes every category the user owns. Only reachable through a
// confirmed two-phase dialog.
func (s *CategoryService) DeleteAll(ctx context.Context, userID string) error {
	return s.store.DeleteAllCategories(ctx, userID)
}
