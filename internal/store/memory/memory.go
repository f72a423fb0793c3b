// Package memory is an in-memory Store used by tests and local development.
// It applies the same ownership and referential rules as the real backends.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"outlay/internal/core"
	"outlay/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	categories  map[string]core.Category
	expenses    map[string]core.Expense
	preferences map[string]core.Preference
	currencies  []core.Currency
}

func New() *Store {
	return &Store{
		categories:  make(map[string]core.Category),
		expenses:    make(map[string]core.Expense),
		preferences: make(map[string]core.Preference),
		currencies: []core.Currency{
			{Code: "USD", Symbol: "$", Name: "US Dollar"},
			{Code: "EUR", Symbol: "€", Name: "Euro"},
			{Code: "GBP", Symbol: "£", Name: "British Pound"},
			{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
			{Code: "CHF", Symbol: "Fr", Name: "Swiss Franc"},
		},
	}
}

func (s *Store) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New().String()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok || existing.UserID != c.UserID {
		return store.ErrNotFound
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	s.detachExpensesLocked(userID, func(e core.Expense) bool { return e.CategoryID == id })
	return nil
}

func (s *Store) DeleteAllCategories(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.categories {
		if c.UserID == userID {
			delete(s.categories, id)
		}
	}
	s.detachExpensesLocked(userID, func(e core.Expense) bool { return e.CategoryID != "" })
	return nil
}

// detachExpensesLocked clears the category reference on the user's expenses
// matching the predicate. Callers hold the write lock.
func (s *Store) detachExpensesLocked(userID string, match func(core.Expense) bool) {
	for id, e := range s.expenses {
		if e.UserID == userID && match(e) {
			e.CategoryID = ""
			s.expenses[id] = e
		}
	}
}

func (s *Store) Expenses(ctx context.Context, userID string) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	// Newest first, matching the hosted store's default ordering.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Expense(ctx context.Context, userID, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.New().String()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) Currencies(ctx context.Context) ([]core.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Currency, len(s.currencies))
	copy(out, s.currencies)
	return out, nil
}

func (s *Store) Preference(ctx context.Context, userID string) (core.Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.preferences[userID]
	if !ok {
		return core.Preference{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) SavePreference(ctx context.Context, p core.Preference) error {
	if p.UserID == "" {
		return core.ErrMissingUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.preferences[p.UserID] = p
	return nil
}

func (s *Store) Close() error {
	return nil
}
