// Package store defines the persistence boundary. Handlers and services talk
// to the Store interface only; the concrete backend is chosen at startup.
package store

import (
	"context"
	"errors"

	"outlay/internal/core"
)

// ErrNotFound is returned when a row does not exist or belongs to a
// different user. Backends never reveal which of the two it was.
var ErrNotFound = errors.New("not found")

// Store is the full persistence surface. Every read and write is scoped to a
// user id; reference data (currencies) is global.
type Store interface {
	Categories(ctx context.Context, userID string) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error
	DeleteAllCategories(ctx context.Context, userID string) error

	Expenses(ctx context.Context, userID string) ([]core.Expense, error)
	Expense(ctx context.Context, userID, id string) (core.Expense, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, userID, id string) error

	Currencies(ctx context.Context) ([]core.Currency, error)
	Preference(ctx context.Context, userID string) (core.Preference, error)
	SavePreference(ctx context.Context, p core.Preference) error

	Close() error
}

// BackendType selects the concrete Store implementation.
type BackendType string

const (
	SupabaseBackend BackendType = "supabase"
	SQLiteBackend   BackendType = "sqlite"
	MemoryBackend   BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is one of the known backends.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SupabaseBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
