// Package supabase is the hosted Store. Rows live in Postgres behind
// PostgREST; every query carries an explicit user_id filter in addition to
// the row-level security policies enforced server side.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"

	"outlay/internal/core"
	"outlay/internal/store"
)

type Store struct {
	client *supabase.Client
}

func New(url, key string) (*Store, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

// Row shapes match the hosted schema. Amounts travel as decimals over the
// wire and convert to cents at this boundary only.
type (
	categoryRow struct {
		ID     string  `json:"id,omitempty"`
		UserID string  `json:"user_id"`
		Name   string  `json:"name"`
		Budget float64 `json:"budget"`
	}

	expenseRow struct {
		ID         string    `json:"id,omitempty"`
		UserID     string    `json:"user_id"`
		Title      string    `json:"title"`
		Amount     float64   `json:"amount"`
		CreatedAt  time.Time `json:"created_at"`
		CategoryID *string   `json:"category_id"`
	}

	currencyRow struct {
		Code   string `json:"code"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}

	preferenceRow struct {
		UserID       string `json:"user_id"`
		CurrencyCode string `json:"currency_code"`
	}
)

func (r categoryRow) toCore() core.Category {
	return core.Category{
		ID:     r.ID,
		UserID: r.UserID,
		Name:   r.Name,
		Budget: core.MoneyFromFloat(r.Budget),
	}
}

func (r expenseRow) toCore() core.Expense {
	e := core.Expense{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Amount:    core.MoneyFromFloat(r.Amount),
		CreatedAt: r.CreatedAt,
	}
	if r.CategoryID != nil {
		e.CategoryID = *r.CategoryID
	}
	return e
}

func expenseToRow(e core.Expense) expenseRow {
	row := expenseRow{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Amount:    e.Amount.Float(),
		CreatedAt: e.CreatedAt,
	}
	if e.CategoryID != "" {
		row.CategoryID = &e.CategoryID
	}
	return row
}

func (s *Store) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	data, _, err := s.client.From("categories").
		Select("*", "", false).
		Eq("user_id", userID).
		Order("name.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	var rows []categoryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	row := categoryRow{UserID: c.UserID, Name: c.Name, Budget: c.Budget.Float()}
	data, _, err := s.client.From("categories").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	var created []categoryRow
	if err := json.Unmarshal(data, &created); err != nil {
		return core.Category{}, fmt.Errorf("parse created category: %w", err)
	}
	if len(created) == 0 {
		return core.Category{}, fmt.Errorf("create category: empty response")
	}
	return created[0].toCore(), nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}

	row := categoryRow{UserID: c.UserID, Name: c.Name, Budget: c.Budget.Float()}
	_, count, err := s.client.From("categories").
		Update(row, "", "exact").
		Eq("id", c.ID).
		Eq("user_id", c.UserID).
		Execute()
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if count == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	_, count, err := s.client.From("categories").
		Delete("", "exact").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if count == 0 {
		return store.ErrNotFound
	}
	// Expense rows keep their category_id; a foreign key ON DELETE SET NULL
	// clears it server side. Readers treat dangling references as unassigned
	// either way.
	return nil
}

func (s *Store) DeleteAllCategories(ctx context.Context, userID string) error {
	_, _, err := s.client.From("categories").
		Delete("", "").
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete all categories: %w", err)
	}
	return nil
}

func (s *Store) Expenses(ctx context.Context, userID string) ([]core.Expense, error) {
	data, _, err := s.client.From("expenses").
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at.desc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetch expenses: %w", err)
	}

	var rows []expenseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse expenses: %w", err)
	}
	out := make([]core.Expense, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	return out, nil
}

func (s *Store) Expense(ctx context.Context, userID, id string) (core.Expense, error) {
	data, _, err := s.client.From("expenses").
		Select("*", "", false).
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return core.Expense{}, fmt.Errorf("fetch expense: %w", err)
	}

	var rows []expenseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense: %w", err)
	}
	if len(rows) == 0 {
		return core.Expense{}, store.ErrNotFound
	}
	return rows[0].toCore(), nil
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	row := expenseToRow(e)
	row.ID = ""
	data, _, err := s.client.From("expenses").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	var created []expenseRow
	if err := json.Unmarshal(data, &created); err != nil {
		return core.Expense{}, fmt.Errorf("parse created expense: %w", err)
	}
	if len(created) == 0 {
		return core.Expense{}, fmt.Errorf("create expense: empty response")
	}
	return created[0].toCore(), nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	_, count, err := s.client.From("expenses").
		Delete("", "exact").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if count == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Currencies(ctx context.Context) ([]core.Currency, error) {
	data, _, err := s.client.From("currencies").
		Select("*", "", false).
		Order("code.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetch currencies: %w", err)
	}

	var rows []currencyRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse currencies: %w", err)
	}
	out := make([]core.Currency, len(rows))
	for i, r := range rows {
		out[i] = core.Currency(r)
	}
	return out, nil
}

func (s *Store) Preference(ctx context.Context, userID string) (core.Preference, error) {
	data, _, err := s.client.From("user_preferences").
		Select("*", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return core.Preference{}, fmt.Errorf("fetch preference: %w", err)
	}

	var rows []preferenceRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return core.Preference{}, fmt.Errorf("parse preference: %w", err)
	}
	if len(rows) == 0 {
		return core.Preference{}, store.ErrNotFound
	}
	return core.Preference(rows[0]), nil
}

func (s *Store) SavePreference(ctx context.Context, p core.Preference) error {
	if p.UserID == "" {
		return core.ErrMissingUser
	}

	row := preferenceRow(p)
	_, _, err := s.client.From("user_preferences").
		Insert(row, true, "user_id", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
