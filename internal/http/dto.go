package httpapi

import (
	"time"

	"github.com/seanlongden/asa-student-portal/internal/models"
)

const dateLayout = "2006-01-02"

type StudentDTO struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Company          *string `json:"company"`
	EmailTool        *string `json:"emailTool"`
	HasAPIKey        bool    `json:"hasApiKey"`
	StripeCustomerID *string `json:"stripeCustomerId"`
	Status           string  `json:"status"`
	JoinDate         string  `json:"joinDate"`
}

func toStudentDTO(s models.Student) StudentDTO {
	return StudentDTO{
		ID:               s.ID,
		Name:             s.Name,
		Email:            s.Email,
		Company:          s.Company,
		EmailTool:        s.EmailTool,
		HasAPIKey:        s.HasAPIKey(),
		StripeCustomerID: s.StripeCustomerID,
		Status:           string(s.Status),
		JoinDate:         formatDate(s.JoinDate),
	}
}

type ProgressDTO struct {
	ID            string `json:"id"`
	ModuleID      string `json:"moduleId"`
	ModuleOrder   int    `json:"moduleOrder"`
	Status        string `json:"status"`
	CompletedDate string `json:"completedDate"`
}

func toProgressDTO(p models.Progress) ProgressDTO {
	return ProgressDTO{
		ID:            p.ID,
		ModuleID:      p.ModuleID,
		ModuleOrder:   p.ModuleOrder,
		Status:        p.Status,
		CompletedDate: formatDate(p.CompletedDate),
	}
}

type InputDTO struct {
	ID          string    `json:"id"`
	ModuleID    string    `json:"moduleId"`
	ModuleOrder int       `json:"moduleOrder"`
	InputKey    string    `json:"inputKey"`
	Value       string    `json:"value"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toInputDTO(in models.Input) InputDTO {
	return InputDTO{
		ID:          in.ID,
		ModuleID:    in.ModuleID,
		ModuleOrder: in.ModuleOrder,
		InputKey:    in.InputKey,
		Value:       in.Value,
		UpdatedAt:   in.UpdatedAt,
	}
}

type LeadDTO struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Company           *string `json:"company"`
	Stage             *string `json:"stage"`
	PositiveReplyDate *string `json:"positiveReplyDate"`
}

func toLeadDTO(l models.Lead) LeadDTO {
	dto := LeadDTO{ID: l.ID, Name: l.Name, Company: l.Company, Stage: l.Stage}
	if l.PositiveReplyDate != nil {
		date := formatDate(*l.PositiveReplyDate)
		dto.PositiveReplyDate = &date
	}
	return dto
}

type ClientDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MonthlyValue *float64 `json:"monthlyValue"`
	Status       *string  `json:"status"`
}

func toClientDTO(c models.Client) ClientDTO {
	return ClientDTO{ID: c.ID, Name: c.Name, MonthlyValue: c.MonthlyValue, Status: c.Status}
}

type MetricDTO struct {
	WeekStarting    string  `json:"weekStarting"`
	EmailsSent      int64   `json:"emailsSent"`
	Replies         int64   `json:"replies"`
	PositiveReplies int64   `json:"positiveReplies"`
	OpenRate        float64 `json:"openRate"`
	BounceRate      float64 `json:"bounceRate"`
}

func toMetricDTO(m models.WeeklyMetric) MetricDTO {
	return MetricDTO{
		WeekStarting:    formatDate(m.WeekStarting),
		EmailsSent:      m.EmailsSent,
		Replies:         m.Replies,
		PositiveReplies: m.PositiveReplies,
		OpenRate:        m.OpenRate,
		BounceRate:      m.BounceRate,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
