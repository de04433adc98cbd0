package services

import (
	"context"
	"testing"
)

func TestInputSaveUpserts(t *testing.T) {
	store := newMemStore()
	svc := NewInputService(store)
	ctx := context.Background()

	first, err := svc.Save(ctx, "s1", "module-1", 1, "target_niche", "dentists")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := svc.Save(ctx, "s1", "module-1", 1, "target_niche", "orthodontists")
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same record to be updated")
	}
	inputs, err := svc.List(ctx, "s1", "module-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inputs) != 1 || inputs[0].Value != "orthodontists" {
		t.Fatalf("unexpected inputs %+v", inputs)
	}
}

func TestInputListAcrossModules(t *testing.T) {
	store := newMemStore()
	svc := NewInputService(store)
	ctx := context.Background()
	_, _ = svc.Save(ctx, "s1", "module-2", 2, "icp", "b")
	_, _ = svc.Save(ctx, "s1", "module-1", 1, "target_niche", "a")
	_, _ = svc.Save(ctx, "s2", "module-1", 1, "target_niche", "other")
	// Empty values are stored as given.
	_, _ = svc.Save(ctx, "s1", "module-1", 1, "offer", "")

	inputs, err := svc.List(ctx, "s1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs for s1, got %d", len(inputs))
	}
	if inputs[0].ModuleOrder != 1 || inputs[len(inputs)-1].ModuleOrder != 2 {
		t.Fatalf("expected module order ascending, got %+v", inputs)
	}
}

func TestInputSaveValidation(t *testing.T) {
	svc := NewInputService(newMemStore())
	if _, err := svc.Save(context.Background(), "s1", "", 1, "k", "v"); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.Save(context.Background(), "s1", "module-1", 1, " ", "v"); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
