package services

import (
	"context"
	"errors"
	"testing"

	"github.com/seanlongden/asa-student-portal/internal/models"
)

func TestGateAuthorize(t *testing.T) {
	store := newMemStore()
	store.addStudent("alice@x.com", models.StatusActive)
	billing := &fakeBilling{active: map[string]bool{"alice@x.com": true, "ghost@x.com": true}}
	gate := &Gate{Billing: billing, Students: store}
	ctx := context.Background()

	student, err := gate.Authorize(ctx, "alice@x.com")
	if err != nil || student.Email != "alice@x.com" {
		t.Fatalf("expected alice, got %+v %v", student, err)
	}
	if _, err := gate.Authorize(ctx, ""); KindOf(err) != KindUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := gate.Authorize(ctx, "bob@x.com"); KindOf(err) != KindSubscriptionInactive {
		t.Fatalf("expected inactive, got %v", err)
	}
	if _, err := gate.Authorize(ctx, "ghost@x.com"); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGateShortCircuitsOnBilling(t *testing.T) {
	store := newMemStore()
	store.fail = true
	gate := &Gate{Billing: &fakeBilling{active: map[string]bool{}}, Students: store}
	// Inactive subscriptions are rejected before the store is consulted.
	if _, err := gate.Authorize(context.Background(), "alice@x.com"); KindOf(err) != KindSubscriptionInactive {
		t.Fatalf("expected inactive, got %v", err)
	}

	gate.Billing = &fakeBilling{checkErr: errors.New("stripe down")}
	if _, err := gate.Authorize(context.Background(), "alice@x.com"); KindOf(err) != KindUpstream {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}

func TestGateIdentifySkipsBilling(t *testing.T) {
	store := newMemStore()
	store.addStudent("carol@x.com", models.StatusChurned)
	gate := &Gate{Billing: &fakeBilling{checkErr: errors.New("must not be called")}, Students: store}
	student, err := gate.Identify(context.Background(), "carol@x.com")
	if err != nil || student.Status != models.StatusChurned {
		t.Fatalf("expected churned carol, got %+v %v", student, err)
	}
}
