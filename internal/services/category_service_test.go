package services

import (
	"context"
	"errors"
	"testing"

	"outlay/internal/core"
	"outlay/internal/store/memory"
)

func TestCategoryCreate(t *testing.T) {
	svc := NewCategoryService(memory.New())
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", "  Food  ", "150")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.Name != "Food" {
		t.Errorf("name = %q, want trimmed %q", created.Name, "Food")
	}
	if created.Budget.Cents != 15000 {
		t.Errorf("budget = %d, want 15000", created.Budget.Cents)
	}

	if _, err := svc.Create(ctx, "u1", "Zero", "0"); err != nil {
		t.Errorf("zero budget should be allowed: %v", err)
	}
	if _, err := svc.Create(ctx, "u1", "Bad", "-5"); !errors.Is(err, core.ErrInvalidBudget) {
		t.Errorf("negative budget = %v, want ErrInvalidBudget", err)
	}
	if _, err := svc.Create(ctx, "u1", "   ", "10"); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("blank name = %v, want ErrEmptyName", err)
	}
}

func TestCategoryUpdate(t *testing.T) {
	st := memory.New()
	svc := NewCategoryService(st)
	ctx := context.Background()

	created, _ := svc.Create(ctx, "u1", "Food", "100")

	if err := svc.Update(ctx, "u1", created.ID, "Meals", "250"); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	cats, _ := svc.List(ctx, "u1")
	if len(cats) != 1 || cats[0].Name != "Meals" || cats[0].Budget.Cents != 25000 {
		t.Errorf("List() after update = %+v", cats)
	}
}

func TestCategoryDeleteAll(t *testing.T) {
	st := memory.New()
	svc := NewCategoryService(st)
	ctx := context.Background()

	_, _ = svc.Create(ctx, "u1", "Food", "100")
	_, _ = svc.Create(ctx, "u1", "Travel", "200")

	if err := svc.DeleteAll(ctx, "u1"); err != nil {
		t.Fatalf("DeleteAll() error: %v", err)
	}
	if cats, _ := svc.List(ctx, "u1"); len(cats) != 0 {
		t.Errorf("categories remain after DeleteAll: %+v", cats)
	}
}
