package http

import (
	"log/slog"
	"net/http"

	"outlay/internal/core"
)

// expenseRow is one expense prepared for rendering: amounts formatted in the
// user's currency, the category resolved to a display name.
type expenseRow struct {
	ID       string
	Title    string
	Category string
	Amount   string
	Date     string
}

// budgetRow is one category's budget bar.
type budgetRow struct {
	ID      string
	Name    string
	Budget  string
	Spent   string
	Over    bool
	Percent int
}

type expenseListData struct {
	Expenses   []expenseRow
	GrandTotal string
	Search     string
	SortKey    string
	SortDir    string
}

type dashboardData struct {
	Email       string
	Currency    core.Currency
	Currencies  []core.Currency
	Categories  []core.Category
	Budgets     []budgetRow
	ExpenseList expenseListData
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	snap, err := s.loadSnapshot(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard snapshot load failed", "user_id", user.ID, "error", err)
		http.Error(w, "failed to load data", http.StatusInternalServerError)
		return
	}

	currency := core.ResolveCurrency(snap.Currencies, snap.Preference.CurrencyCode)
	params := ParseViewParams(r.URL.Query())

	s.render(w, r, "dashboard.html", dashboardData{
		Email:       user.Email,
		Currency:    currency,
		Currencies:  snap.Currencies,
		Categories:  snap.Categories,
		Budgets:     buildBudgetRows(snap, currency),
		ExpenseList: buildExpenseList(snap, currency, params),
	})
}

// handleExpenseList renders the expense table partial. Search and sort state
// ride along in the query so the partial is bookmarkable via hx-push-url.
func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	snap, err := s.loadSnapshot(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense list load failed", "user_id", user.ID, "error", err)
		InternalServerError("Failed to load expenses").Write(w)
		return
	}

	currency := core.ResolveCurrency(snap.Currencies, snap.Preference.CurrencyCode)
	params := ParseViewParams(r.URL.Query())

	s.render(w, r, "expense_list.html", buildExpenseList(snap, currency, params))
}

func (s *Server) handleBudgetList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	snap, err := s.loadSnapshot(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget list load failed", "user_id", user.ID, "error", err)
		InternalServerError("Failed to load budgets").Write(w)
		return
	}

	currency := core.ResolveCurrency(snap.Currencies, snap.Preference.CurrencyCode)
	s.render(w, r, "budget_list.html", struct{ Budgets []budgetRow }{buildBudgetRows(snap, currency)})
}

// buildExpenseList applies filter then sort, in that order, and formats rows
// for display. The grand total always covers the full set, not the filtered
// view.
func buildExpenseList(snap core.Snapshot, currency core.Currency, params ViewParams) expenseListData {
	filtered := core.FilterExpenses(snap.Expenses, snap.Categories, params.Search)
	sorted := core.SortExpenses(filtered, snap.Categories, params.SortKey, params.SortDir)

	rows := make([]expenseRow, len(sorted))
	for i, e := range sorted {
		rows[i] = expenseRow{
			ID:       e.ID,
			Title:    e.Title,
			Category: core.DisplayCategoryName(snap.Categories, e.CategoryID),
			Amount:   e.Amount.FormatIn(currency),
			Date:     e.CreatedAt.Format("2006-01-02"),
		}
	}

	return expenseListData{
		Expenses:   rows,
		GrandTotal: core.GrandTotal(snap.Expenses).FormatIn(currency),
		Search:     params.Search,
		SortKey:    string(params.SortKey),
		SortDir:    string(params.SortDir),
	}
}

func buildBudgetRows(snap core.Snapshot, currency core.Currency) []budgetRow {
	progress := core.BudgetProgress(snap.Categories, snap.Expenses)
	rows := make([]budgetRow, len(progress))
	for i, p := range progress {
		rows[i] = budgetRow{
			ID:      p.Category.ID,
			Name:    p.Category.Name,
			Budget:  p.Category.Budget.FormatIn(currency),
			Spent:   p.Spent.FormatIn(currency),
			Over:    p.Over,
			Percent: int(p.Percent * 100),
		}
	}
	return rows
}
