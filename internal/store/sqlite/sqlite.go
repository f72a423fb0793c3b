// Package sqlite is a local Store backed by an embedded database. It serves
// single-user deployments and the mirror replica the event worker maintains.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"outlay/internal/core"
	"outlay/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Categories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, budget_cents FROM categories WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Budget.Cents); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	c.ID = uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, budget_cents) VALUES (?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Budget.Cents)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, budget_cents = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.Budget.Cents, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	// Detach rather than cascade; the expense rows survive with no category.
	_, err = tx.ExecContext(ctx,
		`UPDATE expenses SET category_id = '' WHERE user_id = ? AND category_id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("detach expenses: %w", err)
	}

	return tx.Commit()
}

func (s *Store) DeleteAllCategories(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete all categories: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE expenses SET category_id = '' WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("detach expenses: %w", err)
	}

	return tx.Commit()
}

func (s *Store) Expenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, amount_cents, created_at, category_id
		 FROM expenses WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Expense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, amount_cents, created_at, category_id
		 FROM expenses WHERE id = ? AND user_id = ?`, id, userID)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	return e, err
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	e.ID = uuid.New().String()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, title, amount_cents, created_at, category_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Amount.Cents, e.CreatedAt, e.CategoryID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

// UpsertExpense writes an expense keeping its existing id. The mirror worker
// uses it to replay events; the HTTP path always goes through CreateExpense.
func (s *Store) UpsertExpense(ctx context.Context, e core.Expense) error {
	if e.ID == "" {
		return store.ErrNotFound
	}
	if err := e.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, title, amount_cents, created_at, category_id)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title,
		   amount_cents = excluded.amount_cents,
		   created_at = excluded.created_at,
		   category_id = excluded.category_id`,
		e.ID, e.UserID, e.Title, e.Amount.Cents, e.CreatedAt, e.CategoryID)
	if err != nil {
		return fmt.Errorf("upsert expense: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func (s *Store) Currencies(ctx context.Context) ([]core.Currency, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, symbol, name FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query currencies: %w", err)
	}
	defer rows.Close()

	var out []core.Currency
	for rows.Next() {
		var c core.Currency
		if err := rows.Scan(&c.Code, &c.Symbol, &c.Name); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Preference(ctx context.Context, userID string) (core.Preference, error) {
	var p core.Preference
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, currency_code FROM user_preferences WHERE user_id = ?`,
		userID).Scan(&p.UserID, &p.CurrencyCode)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Preference{}, store.ErrNotFound
	}
	if err != nil {
		return core.Preference{}, fmt.Errorf("query preference: %w", err)
	}
	return p, nil
}

func (s *Store) SavePreference(ctx context.Context, p core.Preference) error {
	if p.UserID == "" {
		return core.ErrMissingUser
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, currency_code) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET currency_code = excluded.currency_code`,
		p.UserID, p.CurrencyCode)
	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (core.Expense, error) {
	var e core.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount.Cents, &e.CreatedAt, &e.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	return e, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
