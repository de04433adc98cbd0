package db

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/seanlongden/asa-student-portal/internal/models"
	"github.com/seanlongden/asa-student-portal/internal/services"
)

const dateLayout = "2006-01-02"

// Store is the Postgres implementation of every services store interface.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const studentColumns = `id, email, name, company, email_tool, api_key, stripe_customer_id, status, join_date, created_at, updated_at`

func (s *Store) oneStudent(ctx context.Context, query string, args ...interface{}) (*models.Student, error) {
	var student models.Student
	if err := s.db.GetContext(ctx, &student, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (s *Store) StudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	return s.oneStudent(ctx, `SELECT `+studentColumns+` FROM students WHERE email = $1`, strings.TrimSpace(email))
}

func (s *Store) StudentByID(ctx context.Context, id string) (*models.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return s.oneStudent(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
}

func (s *Store) CreateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Status == "" {
		student.Status = models.StatusActive
	}
	joinDate := student.JoinDate
	if joinDate.IsZero() {
		joinDate = time.Now()
	}
	var created models.Student
	err := s.db.GetContext(ctx, &created, `
INSERT INTO students (id, email, name, company, email_tool, api_key, stripe_customer_id, status, join_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date)
RETURNING `+studentColumns,
		student.ID, student.Email, student.Name, student.Company, student.EmailTool, student.APIKey,
		student.StripeCustomerID, string(student.Status), joinDate.Format(dateLayout))
	return created, err
}

// UpdateStudent writes only the fields set in update. An empty string clears
// a nullable column.
func (s *Store) UpdateStudent(ctx context.Context, id string, update services.StudentUpdate) (models.Student, error) {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	nullable := func(column string, value *string) {
		if value == nil {
			return
		}
		if *value == "" {
			add(column, nil)
			return
		}
		add(column, *value)
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	nullable("company", update.Company)
	nullable("email_tool", update.EmailTool)
	nullable("api_key", update.APIKey)
	nullable("stripe_customer_id", update.StripeCustomerID)
	if update.Status != nil {
		add("status", string(*update.Status))
	}
	if len(sets) == 0 {
		return models.Student{}, errors.New("no student fields to update")
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	var updated models.Student
	err := s.db.GetContext(ctx, &updated, `UPDATE students SET `+strings.Join(sets, ", ")+
		` WHERE id = $`+strconv.Itoa(len(args))+` RETURNING `+studentColumns, args...)
	return updated, err
}

func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	err := s.db.SelectContext(ctx, &students, `SELECT `+studentColumns+` FROM students ORDER BY join_date DESC, email`)
	return students, err
}

func (s *Store) ListSyncableStudents(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	err := s.db.SelectContext(ctx, &students, `
SELECT `+studentColumns+`
FROM students
WHERE status = $1
  AND COALESCE(email_tool, '') <> ''
  AND COALESCE(api_key, '') <> ''
ORDER BY email`, string(models.StatusActive))
	return students, err
}

func (s *Store) ListProgress(ctx context.Context, studentID string) ([]models.Progress, error) {
	items := []models.Progress{}
	err := s.db.SelectContext(ctx, &items, `
SELECT id, student_id, module_id, module_order, status, completed_date
FROM progress
WHERE student_id = $1
ORDER BY module_order`, studentID)
	return items, err
}

func (s *Store) UpsertProgress(ctx context.Context, p models.Progress) (models.Progress, error) {
	var out models.Progress
	err := s.db.GetContext(ctx, &out, `
INSERT INTO progress (id, student_id, module_id, module_order, status, completed_date)
VALUES ($1, $2, $3, $4, $5, $6::date)
ON CONFLICT (student_id, module_id) DO UPDATE
SET module_order = EXCLUDED.module_order,
    status = EXCLUDED.status,
    completed_date = EXCLUDED.completed_date
RETURNING id, student_id, module_id, module_order, status, completed_date`,
		uuid.NewString(), p.StudentID, p.ModuleID, p.ModuleOrder, p.Status, p.CompletedDate.Format(dateLayout))
	return out, err
}

func (s *Store) ListInputs(ctx context.Context, studentID, moduleID string) ([]models.Input, error) {
	items := []models.Input{}
	query := `
SELECT id, student_id, module_id, module_order, input_key, value, updated_at
FROM student_inputs
WHERE student_id = $1`
	args := []interface{}{studentID}
	if moduleID != "" {
		query += ` AND module_id = $2`
		args = append(args, moduleID)
	}
	query += ` ORDER BY module_order, input_key`
	err := s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (s *Store) UpsertInput(ctx context.Context, in models.Input) (models.Input, error) {
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = time.Now().UTC()
	}
	var out models.Input
	err := s.db.GetContext(ctx, &out, `
INSERT INTO student_inputs (id, student_id, module_id, module_order, input_key, value, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (student_id, module_id, input_key) DO UPDATE
SET module_order = EXCLUDED.module_order,
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
RETURNING id, student_id, module_id, module_order, input_key, value, updated_at`,
		uuid.NewString(), in.StudentID, in.ModuleID, in.ModuleOrder, in.InputKey, in.Value, in.UpdatedAt)
	return out, err
}

const metricColumns = `id, student_id, week_starting, emails_sent, replies, positive_replies, open_rate, bounce_rate, synced_at`

func (s *Store) UpsertWeeklyMetric(ctx context.Context, m models.WeeklyMetric) (models.WeeklyMetric, error) {
	if m.SyncedAt.IsZero() {
		m.SyncedAt = time.Now().UTC()
	}
	var out models.WeeklyMetric
	err := s.db.GetContext(ctx, &out, `
INSERT INTO weekly_email_metrics (`+metricColumns+`)
VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, week_starting) DO UPDATE
SET emails_sent = EXCLUDED.emails_sent,
    replies = EXCLUDED.replies,
    positive_replies = EXCLUDED.positive_replies,
    open_rate = EXCLUDED.open_rate,
    bounce_rate = EXCLUDED.bounce_rate,
    synced_at = EXCLUDED.synced_at
RETURNING `+metricColumns,
		uuid.NewString(), m.StudentID, m.WeekStarting.Format(dateLayout), m.EmailsSent, m.Replies,
		m.PositiveReplies, m.OpenRate, m.BounceRate, m.SyncedAt)
	return out, err
}

func (s *Store) ListWeeklyMetrics(ctx context.Context, studentID string, limit int) ([]models.WeeklyMetric, error) {
	items := []models.WeeklyMetric{}
	err := s.db.SelectContext(ctx, &items, `
SELECT `+metricColumns+`
FROM weekly_email_metrics
WHERE student_id = $1
ORDER BY week_starting DESC
LIMIT $2`, studentID, limit)
	return items, err
}

func (s *Store) ListLeads(ctx context.Context, studentID string) ([]models.Lead, error) {
	items := []models.Lead{}
	err := s.db.SelectContext(ctx, &items, `
SELECT id, student_id, lead_name, company, stage, positive_reply_date
FROM leads
WHERE student_id = $1
ORDER BY positive_reply_date DESC NULLS LAST, lead_name`, studentID)
	return items, err
}

func (s *Store) CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error) {
	var replyDate interface{}
	if lead.PositiveReplyDate != nil {
		replyDate = lead.PositiveReplyDate.Format(dateLayout)
	}
	var out models.Lead
	err := s.db.GetContext(ctx, &out, `
INSERT INTO leads (id, student_id, lead_name, company, stage, positive_reply_date)
VALUES ($1, $2, $3, $4, $5, $6::date)
RETURNING id, student_id, lead_name, company, stage, positive_reply_date`,
		uuid.NewString(), lead.StudentID, lead.Name, lead.Company, lead.Stage, replyDate)
	return out, err
}

func (s *Store) ListClients(ctx context.Context, studentID string) ([]models.Client, error) {
	items := []models.Client{}
	err := s.db.SelectContext(ctx, &items, `
SELECT id, student_id, client_name, monthly_value::float8 AS monthly_value, status
FROM clients
WHERE student_id = $1
ORDER BY client_name`, studentID)
	return items, err
}

func (s *Store) CreateClient(ctx context.Context, client models.Client) (models.Client, error) {
	var out models.Client
	err := s.db.GetContext(ctx, &out, `
INSERT INTO clients (id, student_id, client_name, monthly_value, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, student_id, client_name, monthly_value::float8 AS monthly_value, status`,
		uuid.NewString(), client.StudentID, client.Name, client.MonthlyValue, client.Status)
	return out, err
}

var (
	_ services.StudentStore   = (*Store)(nil)
	_ services.ProgressStore  = (*Store)(nil)
	_ services.InputStore     = (*Store)(nil)
	_ services.MetricsStore   = (*Store)(nil)
	_ services.DashboardStore = (*Store)(nil)
	_ services.AdminStore     = (*Store)(nil)
)
