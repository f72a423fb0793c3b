package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"outlay/internal/core"
	"outlay/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "outlay_test.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsSeedCurrencies(t *testing.T) {
	s := newTestStore(t)

	curs, err := s.Currencies(context.Background())
	if err != nil {
		t.Fatalf("Currencies() error: %v", err)
	}
	if len(curs) != 5 {
		t.Errorf("Currencies() count = %d, want 5", len(curs))
	}
	if core.ResolveCurrency(curs, "GBP").Symbol != "£" {
		t.Error("GBP missing from migration seed")
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateExpense(ctx, core.Expense{
		UserID: "u1", Title: "Groceries",
		Amount:    core.Money{Cents: 4000},
		CreatedAt: time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateExpense() error: %v", err)
	}

	got, err := s.Expense(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("Expense() error: %v", err)
	}
	if got.Title != "Groceries" || got.Amount.Cents != 4000 {
		t.Errorf("Expense() = %+v", got)
	}

	if _, err := s.Expense(ctx, "u2", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-user read = %v, want ErrNotFound", err)
	}

	if err := s.DeleteExpense(ctx, "u1", created.ID); err != nil {
		t.Fatalf("DeleteExpense() error: %v", err)
	}
	if err := s.DeleteExpense(ctx, "u1", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("double delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteCategoryDetachesExpenses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, core.Category{UserID: "u1", Name: "Food", Budget: core.Money{Cents: 10000}})
	if err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}
	exp, err := s.CreateExpense(ctx, core.Expense{
		UserID: "u1", Title: "Lunch", Amount: core.Money{Cents: 1200},
		CreatedAt: time.Now().UTC(), CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error: %v", err)
	}

	if err := s.DeleteCategory(ctx, "u1", cat.ID); err != nil {
		t.Fatalf("DeleteCategory() error: %v", err)
	}

	got, err := s.Expense(ctx, "u1", exp.ID)
	if err != nil {
		t.Fatalf("Expense() error: %v", err)
	}
	if got.CategoryID != "" {
		t.Errorf("expense still references deleted category %q", got.CategoryID)
	}
}

func TestDeleteAllCategoriesScopedToUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateCategory(ctx, core.Category{UserID: "u1", Name: "Food"}); err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}
	other, err := s.CreateCategory(ctx, core.Category{UserID: "u2", Name: "Books"})
	if err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}

	if err := s.DeleteAllCategories(ctx, "u1"); err != nil {
		t.Fatalf("DeleteAllCategories() error: %v", err)
	}

	if cats, _ := s.Categories(ctx, "u1"); len(cats) != 0 {
		t.Errorf("u1 categories remain: %+v", cats)
	}
	cats, _ := s.Categories(ctx, "u2")
	if len(cats) != 1 || cats[0].ID != other.ID {
		t.Errorf("u2 categories affected: %+v", cats)
	}
}

func TestUpsertExpenseReplay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := core.Expense{
		ID: "mirror-1", UserID: "u1", Title: "Coffee",
		Amount:    core.Money{Cents: 350},
		CreatedAt: time.Date(2025, time.March, 2, 8, 0, 0, 0, time.UTC),
	}
	if err := s.UpsertExpense(ctx, e); err != nil {
		t.Fatalf("UpsertExpense() error: %v", err)
	}
	// Replaying the same event must not duplicate the row.
	e.Title = "Espresso"
	if err := s.UpsertExpense(ctx, e); err != nil {
		t.Fatalf("UpsertExpense() replay error: %v", err)
	}

	exps, err := s.Expenses(ctx, "u1")
	if err != nil {
		t.Fatalf("Expenses() error: %v", err)
	}
	if len(exps) != 1 || exps[0].Title != "Espresso" {
		t.Errorf("replay result = %+v", exps)
	}

	if err := s.UpsertExpense(ctx, core.Expense{UserID: "u1", Title: "x", Amount: core.Money{Cents: 1}}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpsertExpense without id = %v, want ErrNotFound", err)
	}
}

func TestPreferenceUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Preference(ctx, "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Preference(absent) = %v, want ErrNotFound", err)
	}
	if err := s.SavePreference(ctx, core.Preference{UserID: "u1", CurrencyCode: "EUR"}); err != nil {
		t.Fatalf("SavePreference() error: %v", err)
	}
	if err := s.SavePreference(ctx, core.Preference{UserID: "u1", CurrencyCode: "JPY"}); err != nil {
		t.Fatalf("SavePreference() second write error: %v", err)
	}
	p, err := s.Preference(ctx, "u1")
	if err != nil {
		t.Fatalf("Preference() error: %v", err)
	}
	if p.CurrencyCode != "JPY" {
		t.Errorf("preference = %q, want JPY", p.CurrencyCode)
	}
}
