package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"outlay/internal/core"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	user := currentUser(r)
	title := FormValue(r, "title")
	amount := FormValue(r, "amount")
	categoryID := FormValue(r, "category_id")

	expense, err := s.expenses.Create(r.Context(), user.ID, title, amount, categoryID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidAmount):
			UnprocessableEntityError("Enter an amount greater than zero, like 12.50").Write(w)
		case errors.Is(err, core.ErrEmptyTitle):
			UnprocessableEntityError("Give the expense a title").Write(w)
		case errors.Is(err, core.ErrMissingCategory):
			UnprocessableEntityError("Pick a category for the expense").Write(w)
		default:
			slog.ErrorContext(r.Context(), "Expense create failed",
				"user_id", user.ID, "title", title, "error", err)
			InternalServerError("Could not save the expense").Write(w)
		}
		return
	}

	s.invalidateSnapshot(user.ID)

	s.structured.LogExpenseCreated(r.Context(), user.ID, expense.ID, expense.Title, expense.Amount.Cents, expense.CategoryID)

	NewHTMXResponse().
		TriggerExpenseChanged().
		TriggerFormReset().
		SuccessFragment("Recorded " + expense.Title).
		Write(w)
}

// handleArmDeleteExpense arms a two-phase delete for one expense. Nothing is
// removed until the confirm endpoint consumes the token from the dialog.
func (s *Server) handleArmDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	user := currentUser(r)
	id := FormValue(r, "id")
	if id == "" {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	snap, err := s.loadSnapshot(r.Context(), user.ID)
	if err != nil {
		InternalServerError("Failed to load expenses").Write(w)
		return
	}
	title := ""
	for _, e := range snap.Expenses {
		if e.ID == id {
			title = e.Title
			break
		}
	}
	if title == "" {
		NotFoundError("Expense not found").Write(w)
		return
	}

	userID := user.ID
	token := s.confirms.Arm(
		fmt.Sprintf("Delete the expense %q? This cannot be undone.", title),
		func(ctx context.Context) error {
			return s.expenses.Delete(ctx, userID, id)
		})

	subject, _ := s.confirms.Describe(token)
	s.render(w, r, "confirm_dialog.html", confirmDialog{Token: token, Subject: subject})
}
