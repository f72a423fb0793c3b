package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// Category is a named spending bucket with a budget ceiling, owned by one user.
	Category struct {
		ID     string
		UserID string
		Name   string
		Budget Money
	}

	// Expense is a single dated spending record, optionally tagged to a category.
	// CategoryID is a soft reference: the category it names may no longer exist.
	Expense struct {
		ID         string
		UserID     string
		Title      string
		Amount     Money
		CreatedAt  time.Time
		CategoryID string
	}

	// Currency is read-only reference data used for display formatting.
	Currency struct {
		Code   string
		Symbol string
		Name   string
	}

	// Preference holds the per-user display currency, one row per user.
	Preference struct {
		UserID       string
		CurrencyCode string
	}

	// Snapshot is the full in-memory state a dashboard or invoice view derives
	// from. Each fetch replaces the whole snapshot; nothing is patched in place.
	Snapshot struct {
		Categories []Category
		Expenses   []Expense
		Currencies []Currency
		Preference Preference
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidBudget   = errors.New("invalid budget")
	ErrEmptyName       = errors.New("empty category name")
	ErrEmptyTitle      = errors.New("empty expense title")
	ErrMissingUser     = errors.New("missing user id")
	ErrMissingCategory = errors.New("missing category")
)

// DefaultCurrency is used when a user has no stored preference.
var DefaultCurrency = Currency{Code: "USD", Symbol: "$", Name: "US Dollar"}

func (c Category) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	if c.Budget.Cents < 0 {
		return ErrInvalidBudget
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("expense title too long (max 200 characters)")
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// LookupCurrency finds the currency matching code in the reference data.
func LookupCurrency(currencies []Currency, code string) (Currency, bool) {
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// ResolveCurrency returns the currency matching code, falling back to
// DefaultCurrency when the code is unknown or the reference data is empty.
func ResolveCurrency(currencies []Currency, code string) Currency {
	if c, ok := LookupCurrency(currencies, code); ok {
		return c
	}
	return DefaultCurrency
}
