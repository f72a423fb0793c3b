// Package export builds the invoice view of a user's expenses and ships it
// to external destinations.
package export

import (
	"context"
	"time"

	"outlay/internal/core"
)

// InvoiceLine is one expense rendered for the invoice. Category carries the
// display name, with the unassigned placeholder already applied.
type InvoiceLine struct {
	Date     time.Time
	Title    string
	Category string
	Amount   core.Money
}

// Invoice is the complete billing view: every expense the user has, totalled
// over the full set regardless of any dashboard filter.
type Invoice struct {
	UserEmail   string
	Currency    core.Currency
	Lines       []InvoiceLine
	Total       core.Money
	GeneratedAt time.Time
}

// InvoiceExporter ships an invoice somewhere external. The Google Sheets
// exporter implements it; a nil exporter disables the feature.
type InvoiceExporter interface {
	ExportInvoice(ctx context.Context, inv Invoice) (string, error)
}

// BuildInvoice derives an invoice from a snapshot. The expense order is
// preserved from the snapshot (newest first as fetched).
func BuildInvoice(snap core.Snapshot, email string, currency core.Currency) Invoice {
	lines := make([]InvoiceLine, len(snap.Expenses))
	for i, e := range snap.Expenses {
		lines[i] = InvoiceLine{
			Date:     e.CreatedAt,
			Title:    e.Title,
			Category: core.DisplayCategoryName(snap.Categories, e.CategoryID),
			Amount:   e.Amount,
		}
	}

	return Invoice{
		UserEmail:   email,
		Currency:    currency,
		Lines:       lines,
		Total:       core.GrandTotal(snap.Expenses),
		GeneratedAt: time.Now().UTC(),
	}
}
