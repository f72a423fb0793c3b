package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"outlay/internal/confirm"
	"outlay/internal/core"
	"outlay/internal/store"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	user := currentUser(r)
	name := FormValue(r, "name")
	budget := FormValue(r, "budget")

	category, err := s.categories.Create(r.Context(), user.ID, name, budget)
	if err != nil {
		writeCategoryError(w, r, err)
		return
	}

	s.invalidateSnapshot(user.ID)

	s.structured.LogCategoryCreated(r.Context(), user.ID, category.ID, category.Name, category.Budget.Cents)

	NewHTMXResponse().
		TriggerCategoryChanged().
		TriggerFormReset().
		SuccessFragment("Added category " + category.Name).
		Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
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
		BadRequestError("Missing category id").Write(w)
		return
	}

	err := s.categories.Update(r.Context(), user.ID, id, FormValue(r, "name"), FormValue(r, "budget"))
	if err != nil {
		writeCategoryError(w, r, err)
		return
	}

	s.invalidateSnapshot(user.ID)

	NewHTMXResponse().
		TriggerCategoryChanged().
		SuccessFragment("Category updated").
		Write(w)
}

// confirmDialog is the template data for the pending-confirmation partial.
type confirmDialog struct {
	Token   string
	Subject string
}

// handleArmDeleteCategory arms a two-phase delete for one category. Nothing
// is removed yet; the dialog the user gets back carries the token that the
// confirm endpoint consumes.
func (s *Server) handleArmDeleteCategory(w http.ResponseWriter, r *http.Request) {
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
		BadRequestError("Missing category id").Write(w)
		return
	}

	snap, err := s.loadSnapshot(r.Context(), user.ID)
	if err != nil {
		InternalServerError("Failed to load categories").Write(w)
		return
	}
	name := core.CategoryName(snap.Categories, id)
	if name == "" {
		NotFoundError("Category not found").Write(w)
		return
	}

	userID := user.ID
	token := s.confirms.Arm(
		fmt.Sprintf("Delete the category %q? Its expenses are kept and become unassigned.", name),
		func(ctx context.Context) error {
			return s.categories.Delete(ctx, userID, id)
		})

	subject, _ := s.confirms.Describe(token)
	s.render(w, r, "confirm_dialog.html", confirmDialog{Token: token, Subject: subject})
}

// handleArmDeleteAll arms the bulk category wipe.
func (s *Server) handleArmDeleteAll(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	user := currentUser(r)
	snap, err := s.loadSnapshot(r.Context(), user.ID)
	if err != nil {
		InternalServerError("Failed to load categories").Write(w)
		return
	}

	userID := user.ID
	token := s.confirms.Arm(
		fmt.Sprintf("Delete all %d categories? Expenses are kept and become unassigned.", len(snap.Categories)),
		func(ctx context.Context) error {
			return s.categories.DeleteAll(ctx, userID)
		})

	subject, _ := s.confirms.Describe(token)
	s.render(w, r, "confirm_dialog.html", confirmDialog{Token: token, Subject: subject})
}

// handleConfirm settles a pending confirmation. choice=confirm runs the
// armed action; anything else declines it. Either way the token is spent.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	user := currentUser(r)
	token := FormValue(r, "token")
	if FormValue(r, "choice") != "confirm" {
		s.confirms.Decline(token)
		NewHTMXResponse().SuccessFragment("Nothing was deleted.").Write(w)
		return
	}

	err := s.confirms.Confirm(r.Context(), token)
	switch {
	case errors.Is(err, confirm.ErrUnknownToken):
		ErrorResponse(http.StatusGone, "This confirmation has expired. Try again.").Write(w)
		return
	case errors.Is(err, confirm.ErrInFlight):
		ErrorResponse(http.StatusConflict, "Already in progress.").Write(w)
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Confirmed action failed",
			"user_id", user.ID, "error", err)
		InternalServerError("The delete failed; nothing further was changed").Write(w)
		return
	}

	s.invalidateSnapshot(user.ID)

	NewHTMXResponse().
		TriggerCategoryChanged().
		TriggerExpenseChanged().
		SuccessFragment("Deleted.").
		Write(w)
}

func writeCategoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		UnprocessableEntityError("Give the category a name").Write(w)
	case errors.Is(err, core.ErrInvalidBudget):
		UnprocessableEntityError("Budget must be zero or a positive amount").Write(w)
	case errors.Is(err, store.ErrNotFound):
		NotFoundError("Category not found").Write(w)
	default:
		slog.ErrorContext(r.Context(), "Category write failed", "error", err)
		InternalServerError("Could not save the category").Write(w)
	}
}
