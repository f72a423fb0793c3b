package core

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// UnassignedLabel is shown for expenses whose category reference is empty or
// dangling.
const UnassignedLabel = "—"

type (
	SortKey string
	SortDir string
)

const (
	SortByDate     SortKey = "date"
	SortByAmount   SortKey = "amount"
	SortByCategory SortKey = "category"

	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// IsValid reports whether the sort key is one of the supported keys.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByDate, SortByAmount, SortByCategory:
		return true
	}
	return false
}

// CategoryProgress is the derived per-category budget view. Nothing here is
// persisted; it is recomputed from the snapshot on every render.
type CategoryProgress struct {
	Category Category
	Spent    Money
	Over     bool
	Percent  float64
}

// BudgetProgress computes spend totals, overage flags and progress
// percentages for every category. Percent is clamped to [0, 1]; a zero
// budget always yields 0 to avoid dividing by zero.
func BudgetProgress(cats []Category, exps []Expense) []CategoryProgress {
	spent := make(map[string]int64, len(cats))
	for _, e := range exps {
		if e.CategoryID != "" {
			spent[e.CategoryID] += e.Amount.Cents
		}
	}

	out := make([]CategoryProgress, len(cats))
	for i, c := range cats {
		s := spent[c.ID]
		p := CategoryProgress{
			Category: c,
			Spent:    Money{Cents: s},
			Over:     s > c.Budget.Cents,
		}
		if c.Budget.Cents > 0 {
			p.Percent = float64(s) / float64(c.Budget.Cents)
			if p.Percent > 1.0 {
				p.Percent = 1.0
			}
		}
		out[i] = p
	}
	return out
}

// CategoryName resolves an expense's category name against the snapshot's
// categories. Missing and dangling references resolve to the empty string.
func CategoryName(cats []Category, categoryID string) string {
	if categoryID == "" {
		return ""
	}
	for _, c := range cats {
		if c.ID == categoryID {
			return c.Name
		}
	}
	return ""
}

// DisplayCategoryName is CategoryName with the placeholder applied for
// rendering.
func DisplayCategoryName(cats []Category, categoryID string) string {
	if name := CategoryName(cats, categoryID); name != "" {
		return name
	}
	return UnassignedLabel
}

// FilterExpenses retains expenses whose title or resolved category name
// contains search, case-insensitively. Empty search returns a copy of the
// input unchanged in order.
func FilterExpenses(exps []Expense, cats []Category, search string) []Expense {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Expense, 0, len(exps))
	for _, e := range exps {
		if search == "" {
			out = append(out, e)
			continue
		}
		if strings.Contains(strings.ToLower(e.Title), search) {
			out = append(out, e)
			continue
		}
		if name := CategoryName(cats, e.CategoryID); name != "" &&
			strings.Contains(strings.ToLower(name), search) {
			out = append(out, e)
		}
	}
	return out
}

// SortExpenses returns a sorted copy of exps. The sort is stable so that
// equal keys keep their fetch order across repeated re-renders. Category
// names compare with a locale-aware collator; unassigned expenses sort with
// the empty name.
func SortExpenses(exps []Expense, cats []Category, key SortKey, dir SortDir) []Expense {
	out := make([]Expense, len(exps))
	copy(out, exps)

	var less func(a, b Expense) bool
	switch key {
	case SortByAmount:
		less = func(a, b Expense) bool { return a.Amount.Cents < b.Amount.Cents }
	case SortByCategory:
		coll := collate.New(language.Und)
		less = func(a, b Expense) bool {
			return coll.CompareString(CategoryName(cats, a.CategoryID), CategoryName(cats, b.CategoryID)) < 0
		}
	default: // SortByDate
		less = func(a, b Expense) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}

	sort.SliceStable(out, func(i, j int) bool {
		if dir == SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// GrandTotal sums amounts over the full, unfiltered expense set. The invoice
// view uses this; it must agree with the dashboard whenever the underlying
// data is unchanged.
func GrandTotal(exps []Expense) Money {
	var total int64
	for _, e := range exps {
		total += e.Amount.Cents
	}
	return Money{Cents: total}
}
