package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCategoryValidate(t *testing.T) {
	valid := Category{ID: "c1", UserID: "u1", Name: "Food", Budget: Money{Cents: 10000}}

	tests := []struct {
		name    string
		mutate  func(c Category) Category
		wantErr error
	}{
		{name: "valid", mutate: func(c Category) Category { return c }},
		{name: "zero budget valid", mutate: func(c Category) Category { c.Budget = Money{}; return c }},
		{name: "missing user", mutate: func(c Category) Category { c.UserID = ""; return c }, wantErr: ErrMissingUser},
		{name: "empty name", mutate: func(c Category) Category { c.Name = "   "; return c }, wantErr: ErrEmptyName},
		{name: "negative budget", mutate: func(c Category) Category { c.Budget = Money{Cents: -1}; return c }, wantErr: ErrInvalidBudget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	long := valid
	long.Name = strings.Repeat("x", 101)
	if long.Validate() == nil {
		t.Error("Validate() accepted a 101-character name")
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		ID: "e1", UserID: "u1", Title: "Groceries",
		Amount: Money{Cents: 4200}, CreatedAt: time.Now(), CategoryID: "c1",
	}

	tests := []struct {
		name    string
		mutate  func(e Expense) Expense
		wantErr error
	}{
		{name: "valid", mutate: func(e Expense) Expense { return e }},
		{name: "no category still valid", mutate: func(e Expense) Expense { e.CategoryID = ""; return e }},
		{name: "missing user", mutate: func(e Expense) Expense { e.UserID = ""; return e }, wantErr: ErrMissingUser},
		{name: "empty title", mutate: func(e Expense) Expense { e.Title = ""; return e }, wantErr: ErrEmptyTitle},
		{name: "zero amount", mutate: func(e Expense) Expense { e.Amount = Money{}; return e }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(e Expense) Expense { e.Amount = Money{Cents: -100}; return e }, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveCurrency(t *testing.T) {
	currencies := []Currency{
		{Code: "USD", Symbol: "$", Name: "US Dollar"},
		{Code: "EUR", Symbol: "€", Name: "Euro"},
	}

	if got := ResolveCurrency(currencies, "EUR"); got.Symbol != "€" {
		t.Errorf("ResolveCurrency(EUR) = %+v", got)
	}
	if got := ResolveCurrency(currencies, "XXX"); got != DefaultCurrency {
		t.Errorf("unknown code should fall back to default, got %+v", got)
	}
	if got := ResolveCurrency(nil, "EUR"); got != DefaultCurrency {
		t.Errorf("empty reference data should fall back to default, got %+v", got)
	}
}
