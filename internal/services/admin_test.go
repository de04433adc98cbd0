package services

import (
	"context"
	"testing"

	"github.com/seanlongden/asa-student-portal/internal/models"
)

func TestAdminAddLeadAndClient(t *testing.T) {
	store := newMemStore()
	student := store.addStudent("alice@x.com", models.StatusActive)
	svc := &AdminService{Store: store}
	ctx := context.Background()

	lead, err := svc.AddLead(ctx, student.ID, LeadInput{Name: " Acme ", Stage: "Call booked", PositiveReplyDate: "2026-02-03"})
	if err != nil {
		t.Fatalf("add lead: %v", err)
	}
	if lead.Name != "Acme" || lead.Company != nil || *lead.Stage != "Call booked" || lead.PositiveReplyDate.Day() != 3 {
		t.Fatalf("unexpected lead %+v", lead)
	}
	if _, err := svc.AddLead(ctx, student.ID, LeadInput{Name: "X", PositiveReplyDate: "03/02/2026"}); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected bad date, got %v", err)
	}
	if _, err := svc.AddLead(ctx, "missing", LeadInput{Name: "X"}); KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	value := 2500.0
	client, err := svc.AddClient(ctx, student.ID, ClientInput{Name: "Globex", MonthlyValue: &value, Status: "Active"})
	if err != nil || *client.MonthlyValue != 2500 {
		t.Fatalf("add client: %+v %v", client, err)
	}
	negative := -1.0
	if _, err := svc.AddClient(ctx, student.ID, ClientInput{Name: "Y", MonthlyValue: &negative}); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid value, got %v", err)
	}
	if _, err := svc.AddClient(ctx, student.ID, ClientInput{}); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected missing name, got %v", err)
	}

	students, err := svc.ListStudents(ctx)
	if err != nil || len(students) != 1 {
		t.Fatalf("list: %+v %v", students, err)
	}
}
