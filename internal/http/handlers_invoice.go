package http

import (
	"errors"
	"log/slog"
	"net/http"

	"outlay/internal/core"
	"outlay/internal/export"
	applog "outlay/internal/log"
	"outlay/internal/services"
)

type invoicePage struct {
	Invoice   export.Invoice
	Lines     []expenseRow
	Total     string
	CanExport bool
}

// handleInvoice renders the billing view: every expense, unfiltered, with
// the grand total. The dashboard and the invoice always agree because both
// derive from the same snapshot.
func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	snap, err := s.loadSnapshot(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Invoice snapshot load failed", "user_id", user.ID, "error", err)
		http.Error(w, "failed to load data", http.StatusInternalServerError)
		return
	}

	// ?currency= overrides the stored preference for this view only. Unknown
	// codes fall back to the preference.
	currency := core.ResolveCurrency(snap.Currencies, snap.Preference.CurrencyCode)
	if code := r.URL.Query().Get("currency"); code != "" {
		if cur, ok := core.LookupCurrency(snap.Currencies, code); ok {
			currency = cur
		}
	}
	inv := export.BuildInvoice(snap, user.Email, currency)

	lines := make([]expenseRow, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = expenseRow{
			Title:    l.Title,
			Category: l.Category,
			Amount:   l.Amount.FormatIn(currency),
			Date:     l.Date.Format("2006-01-02"),
		}
	}

	s.render(w, r, "invoice.html", invoicePage{
		Invoice:   inv,
		Lines:     lines,
		Total:     inv.Total.FormatIn(currency),
		CanExport: s.exporter != nil,
	})
}

// handleInvoiceExport pushes the invoice to the configured spreadsheet.
func (s *Server) handleInvoiceExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.exporter == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Export is not configured").Write(w)
		return
	}

	user := currentUser(r)
	snap, err := s.loadSnapshot(r.Context(), user.ID)
	if err != nil {
		InternalServerError("Failed to load data").Write(w)
		return
	}

	currency := core.ResolveCurrency(snap.Currencies, snap.Preference.CurrencyCode)
	inv := export.BuildInvoice(snap, user.Email, currency)

	ref, err := s.exporter.ExportInvoice(r.Context(), inv)
	if err != nil {
		s.structured.LogError(r.Context(), "Invoice export failed", err,
			applog.ComponentExport, applog.OpExport, applog.NewFields().WithUser(user.ID))
		InternalServerError("Export failed").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Invoice exported",
		"user_id", user.ID,
		"lines", len(inv.Lines),
		"sheets_ref", ref)

	NewHTMXResponse().
		TriggerSuccessNotification("Invoice exported").
		SuccessFragment("Exported to " + ref).
		Write(w)
}

// handleSaveCurrency stores the user's display currency and tells the page
// to re-render its amounts.
func (s *Server) handleSaveCurrency(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	user := currentUser(r)
	code := FormValue(r, "currency")

	if err := s.preferences.Save(r.Context(), user.ID, code); err != nil {
		if errors.Is(err, services.ErrUnknownCurrency) {
			UnprocessableEntityError("Unknown currency").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Preference save failed",
			"user_id", user.ID, "currency_code", code, "error", err)
		InternalServerError("Could not save the preference").Write(w)
		return
	}

	s.invalidateSnapshot(user.ID)

	NewHTMXResponse().
		TriggerPreferenceChanged().
		SuccessFragment("Currency set to " + code).
		Write(w)
}
