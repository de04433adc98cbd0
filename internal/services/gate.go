package services

import (
	"context"
	"strings"

	"github.com/seanlongden/asa-student-portal/internal/logger"
	"github.com/seanlongden/asa-student-portal/internal/models"
)

type StudentLookup interface {
	// StudentByEmail matches the email exactly as stored and returns
	// (nil, nil) when no student has it.
	StudentByEmail(ctx context.Context, email string) (*models.Student, error)
}

// Gate resolves a session email to a student. Authorize also requires an
// active subscription; the checks short-circuit in order.
type Gate struct {
	Billing  SubscriptionChecker
	Students StudentLookup
	Log      *logger.Logger
}

func (g *Gate) Authorize(ctx context.Context, email string) (*models.Student, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrUnauthenticated("Not authenticated")
	}
	sub, err := g.Billing.CheckSubscription(ctx, email)
	if err != nil {
		return nil, ErrUpstream(err, "Server error")
	}
	if !sub.Active {
		return nil, ErrSubscriptionInactive("No active subscription")
	}
	return g.lookup(ctx, email)
}

// Identify resolves the student without consulting billing.
func (g *Gate) Identify(ctx context.Context, email string) (*models.Student, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrUnauthenticated("Not authenticated")
	}
	return g.lookup(ctx, email)
}

func (g *Gate) lookup(ctx context.Context, email string) (*models.Student, error) {
	student, err := g.Students.StudentByEmail(ctx, email)
	if err != nil {
		return nil, ErrUpstream(err, "Server error")
	}
	if student == nil {
		return nil, ErrNotFound("Student not found")
	}
	return student, nil
}
