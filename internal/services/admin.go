package services

import (
	"context"
	"strings"
	"time"

	"github.com/seanlongden/asa-student-portal/internal/models"
)

type AdminStore interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	StudentByID(ctx context.Context, id string) (*models.Student, error)
	CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error)
	CreateClient(ctx context.Context, client models.Client) (models.Client, error)
}

type LeadInput struct {
	Name              string `json:"leadName"`
	Company           string `json:"company"`
	Stage             string `json:"stage"`
	PositiveReplyDate string `json:"positiveReplyDate"`
}

type ClientInput struct {
	Name         string   `json:"clientName"`
	MonthlyValue *float64 `json:"monthlyValue"`
	Status       string   `json:"status"`
}

// AdminService backs the operator endpoints. Leads and clients are only
// written here; students read them on the dashboard.
type AdminService struct {
	Store AdminStore
}

func (s *AdminService) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := s.Store.ListStudents(ctx)
	if err != nil {
		return nil, ErrUpstream(err, "Server error")
	}
	return students, nil
}

func (s *AdminService) student(ctx context.Context, id string) error {
	student, err := s.Store.StudentByID(ctx, id)
	if err != nil {
		return ErrUpstream(err, "Server error")
	}
	if student == nil {
		return ErrNotFound("Student not found")
	}
	return nil
}

func (s *AdminService) AddLead(ctx context.Context, studentID string, in LeadInput) (models.Lead, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Lead{}, ErrInvalidInput("leadName is required")
	}
	lead := models.Lead{StudentID: studentID, Name: name, Company: optional(in.Company), Stage: optional(in.Stage)}
	if raw := strings.TrimSpace(in.PositiveReplyDate); raw != "" {
		date, err := time.Parse(DateLayout, raw)
		if err != nil {
			return models.Lead{}, ErrInvalidInput("positiveReplyDate must be YYYY-MM-DD")
		}
		lead.PositiveReplyDate = &date
	}
	if err := s.student(ctx, studentID); err != nil {
		return models.Lead{}, err
	}
	created, err := s.Store.CreateLead(ctx, lead)
	if err != nil {
		return models.Lead{}, ErrUpstream(err, "Server error")
	}
	return created, nil
}

func (s *AdminService) AddClient(ctx context.Context, studentID string, in ClientInput) (models.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Client{}, ErrInvalidInput("clientName is required")
	}
	if in.MonthlyValue != nil && *in.MonthlyValue < 0 {
		return models.Client{}, ErrInvalidInput("monthlyValue must not be negative")
	}
	if err := s.student(ctx, studentID); err != nil {
		return models.Client{}, err
	}
	created, err := s.Store.CreateClient(ctx, models.Client{
		StudentID:    studentID,
		Name:         name,
		MonthlyValue: in.MonthlyValue,
		Status:       optional(in.Status),
	})
	if err != nil {
		return models.Client{}, ErrUpstream(err, "Server error")
	}
	return created, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
