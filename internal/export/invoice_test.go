package export

import (
	"testing"
	"time"

	"outlay/internal/core"
)

func TestBuildInvoice(t *testing.T) {
	snap := core.Snapshot{
		Categories: []core.Category{
			{ID: "c1", UserID: "u1", Name: "Food", Budget: core.Money{Cents: 10000}},
		},
		Expenses: []core.Expense{
			{ID: "e1", UserID: "u1", Title: "Groceries", Amount: core.Money{Cents: 4000},
				CreatedAt: time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC), CategoryID: "c1"},
			{ID: "e2", UserID: "u1", Title: "Gadget", Amount: core.Money{Cents: 1500},
				CreatedAt: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), CategoryID: "c-gone"},
		},
	}
	eur := core.Currency{Code: "EUR", Symbol: "€", Name: "Euro"}

	inv := BuildInvoice(snap, "a@example.com", eur)

	if inv.Total.Cents != 5500 {
		t.Errorf("total = %d, want 5500", inv.Total.Cents)
	}
	if inv.Currency.Code != "EUR" || inv.UserEmail != "a@example.com" {
		t.Errorf("invoice header = %+v", inv)
	}
	if len(inv.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(inv.Lines))
	}
	if inv.Lines[0].Category != "Food" {
		t.Errorf("line 0 category = %q", inv.Lines[0].Category)
	}
	if inv.Lines[1].Category != core.UnassignedLabel {
		t.Errorf("dangling reference should render %q, got %q", core.UnassignedLabel, inv.Lines[1].Category)
	}
	if inv.Total.FormatIn(eur) != "€55.00 EUR" {
		t.Errorf("formatted total = %q", inv.Total.FormatIn(eur))
	}
}

func TestBuildInvoiceEmpty(t *testing.T) {
	inv := BuildInvoice(core.Snapshot{}, "a@example.com", core.DefaultCurrency)

	if len(inv.Lines) != 0 {
		t.Errorf("lines = %d, want 0", len(inv.Lines))
	}
	if inv.Total.Cents != 0 {
		t.Errorf("total = %d, want 0", inv.Total.Cents)
	}
	if inv.Total.FormatIn(core.DefaultCurrency) != "$0.00 USD" {
		t.Errorf("formatted empty total = %q", inv.Total.FormatIn(core.DefaultCurrency))
	}
}
