package models

import "time"

type StudentStatus string

const (
	StatusActive        StudentStatus = "Active"
	StatusChurned       StudentStatus = "Churned"
	StatusPaymentFailed StudentStatus = "Payment Failed"
)

const ProgressCompleted = "Completed"

type Student struct {
	ID               string        `db:"id"`
	Email            string        `db:"email"`
	Name             string        `db:"name"`
	Company          *string       `db:"company"`
	EmailTool        *string       `db:"email_tool"`
	APIKey           *string       `db:"api_key"`
	StripeCustomerID *string       `db:"stripe_customer_id"`
	Status           StudentStatus `db:"status"`
	JoinDate         time.Time     `db:"join_date"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

func (s Student) HasAPIKey() bool {
	return s.APIKey != nil && *s.APIKey != ""
}

type Progress struct {
	ID            string    `db:"id"`
	StudentID     string    `db:"student_id"`
	ModuleID      string    `db:"module_id"`
	ModuleOrder   int       `db:"module_order"`
	Status        string    `db:"status"`
	CompletedDate time.Time `db:"completed_date"`
}

type Input struct {
	ID          string    `db:"id"`
	StudentID   string    `db:"student_id"`
	ModuleID    string    `db:"module_id"`
	ModuleOrder int       `db:"module_order"`
	InputKey    string    `db:"input_key"`
	Value       string    `db:"value"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type WeeklyMetric struct {
	ID              string    `db:"id"`
	StudentID       string    `db:"student_id"`
	WeekStarting    time.Time `db:"week_starting"`
	EmailsSent      int64     `db:"emails_sent"`
	Replies         int64     `db:"replies"`
	PositiveReplies int64     `db:"positive_replies"`
	OpenRate        float64   `db:"open_rate"`
	BounceRate      float64   `db:"bounce_rate"`
	SyncedAt        time.Time `db:"synced_at"`
}

type Lead struct {
	ID                string     `db:"id"`
	StudentID         string     `db:"student_id"`
	Name              string     `db:"lead_name"`
	Company           *string    `db:"company"`
	Stage             *string    `db:"stage"`
	PositiveReplyDate *time.Time `db:"positive_reply_date"`
}

type Client struct {
	ID           string   `db:"id"`
	StudentID    string   `db:"student_id"`
	Name         string   `db:"client_name"`
	MonthlyValue *float64 `db:"monthly_value"`
	Status       *string  `db:"status"`
}
