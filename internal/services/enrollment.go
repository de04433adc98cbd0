package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/seanlongden/asa-student-portal/internal/emailtools"
	"github.com/seanlongden/asa-student-portal/internal/logger"
	"github.com/seanlongden/asa-student-portal/internal/models"
)

type StudentStore interface {
	StudentLookup
	CreateStudent(ctx context.Context, student models.Student) (models.Student, error)
	UpdateStudent(ctx context.Context, id string, update StudentUpdate) (models.Student, error)
}

// StudentUpdate lists the columns to change; nil fields are left as they are.
// A pointer to "" clears a nullable column.
type StudentUpdate struct {
	Name             *string
	Company          *string
	EmailTool        *string
	APIKey           *string
	StripeCustomerID *string
	Status           *models.StudentStatus
}

func (u StudentUpdate) Empty() bool {
	return u.Name == nil && u.Company == nil && u.EmailTool == nil &&
		u.APIKey == nil && u.StripeCustomerID == nil && u.Status == nil
}

type SettingsView struct {
	EmailTool string `json:"emailTool"`
	HasAPIKey bool   `json:"hasApiKey"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
}

type SettingsUpdate struct {
	EmailTool *string
	APIKey    *string
	Company   *string
}

type LoginResult struct {
	Email  string
	Active bool
}

type EnrollmentService struct {
	Students  StudentStore
	Billing   Billing
	Notifier  Notifier
	Tokens    MagicTokens
	Throttle  Throttle
	Sealer    *KeySealer
	PublicURL string
	Log       *logger.Logger
	Now       func() time.Time
}

func (s *EnrollmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *EnrollmentService) loginLink(email string) string {
	return s.PublicURL + "/api/auth/verify?token=" + url.QueryEscape(s.Tokens.Issue(email))
}

// RequestLoginLink emails a magic link to a known student. Unknown and
// throttled addresses get the same success response as known ones.
func (s *EnrollmentService) RequestLoginLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrInvalidInput("Email is required")
	}
	if s.Throttle != nil {
		allowed, err := s.Throttle.Allow(ctx, "login:"+strings.ToLower(email))
		if err != nil {
			s.Log.Warn("login link throttle unavailable", "error", err)
		} else if !allowed {
			s.Log.Info("login link throttled", "email", email)
			return nil
		}
	}
	student, err := s.Students.StudentByEmail(ctx, email)
	if err != nil {
		return ErrUpstream(err, "Server error")
	}
	if student == nil {
		return nil
	}
	html, err := render(loginEmail, emailData{Link: s.loginLink(email), Minutes: s.ttlMinutes()})
	if err != nil {
		return err
	}
	if err := s.Notifier.Send(ctx, email, loginSubject, html); err != nil {
		return ErrUpstream(err, "Failed to send login link")
	}
	return nil
}

func (s *EnrollmentService) ttlMinutes() int {
	return int(s.Tokens.ttl() / time.Minute)
}

// VerifyLogin checks a magic link token. A billing failure counts as an
// inactive subscription so the student lands on the reactivation page.
func (s *EnrollmentService) VerifyLogin(ctx context.Context, token string) (LoginResult, bool) {
	email, ok := s.Tokens.Verify(token)
	if !ok {
		return LoginResult{}, false
	}
	sub, err := s.Billing.CheckSubscription(ctx, email)
	if err != nil {
		s.Log.Error("subscription check failed during login", "email", email, "error", err)
		return LoginResult{Email: email}, true
	}
	return LoginResult{Email: email, Active: sub.Active}, true
}

func (s *EnrollmentService) HandleBillingEvent(ctx context.Context, event BillingEvent) error {
	switch event.Type {
	case EventCheckoutCompleted:
		return s.onCheckoutCompleted(ctx, event)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		if event.SubscriptionStatus != "active" {
			return nil
		}
		email, name, err := s.resolveCustomer(ctx, event)
		if err != nil || email == "" {
			return err
		}
		_, _, err = s.activate(ctx, email, name, event.CustomerID)
		return err
	case EventSubscriptionDeleted:
		return s.setStatusByCustomer(ctx, event, models.StatusChurned)
	case EventPaymentFailed:
		return s.setStatusByCustomer(ctx, event, models.StatusPaymentFailed)
	default:
		s.Log.Debug("ignoring billing event", "type", event.Type, "id", event.ID)
		return nil
	}
}

func (s *EnrollmentService) onCheckoutCompleted(ctx context.Context, event BillingEvent) error {
	email := strings.TrimSpace(event.Email)
	if email == "" {
		s.Log.Warn("checkout completed without an email", "id", event.ID)
		return nil
	}
	student, created, err := s.activate(ctx, email, event.Name, event.CustomerID)
	if err != nil {
		return err
	}
	s.Log.Info("student enrolled", "email", email, "created", created)
	html, err := render(welcomeEmail, emailData{Name: student.Name, Link: s.loginLink(email), Minutes: s.ttlMinutes()})
	if err != nil {
		return err
	}
	if err := s.Notifier.Send(ctx, email, welcomeSubject, html); err != nil {
		return ErrUpstream(err, "Failed to send welcome email")
	}
	return nil
}

// activate creates the student as Active or reactivates the existing record.
func (s *EnrollmentService) activate(ctx context.Context, email, name, customerID string) (models.Student, bool, error) {
	existing, err := s.Students.StudentByEmail(ctx, email)
	if err != nil {
		return models.Student{}, false, ErrUpstream(err, "Server error")
	}
	if existing == nil {
		student := models.Student{
			Email:    email,
			Name:     strings.TrimSpace(name),
			Status:   models.StatusActive,
			JoinDate: DateOf(s.now()),
		}
		if customerID != "" {
			student.StripeCustomerID = &customerID
		}
		created, err := s.Students.CreateStudent(ctx, student)
		if err != nil {
			return models.Student{}, false, ErrUpstream(err, "Server error")
		}
		return created, true, nil
	}
	active := models.StatusActive
	update := StudentUpdate{Status: &active}
	if customerID != "" {
		update.StripeCustomerID = &customerID
	}
	updated, err := s.Students.UpdateStudent(ctx, existing.ID, update)
	if err != nil {
		return models.Student{}, false, ErrUpstream(err, "Server error")
	}
	return updated, false, nil
}

func (s *EnrollmentService) resolveCustomer(ctx context.Context, event BillingEvent) (string, string, error) {
	if event.Email != "" {
		return event.Email, event.Name, nil
	}
	if event.CustomerID == "" {
		return "", "", nil
	}
	customer, err := s.Billing.Customer(ctx, event.CustomerID)
	if err != nil {
		return "", "", ErrUpstream(err, "Failed to load customer")
	}
	return customer.Email, customer.Name, nil
}

// setStatusByCustomer never creates a record; unknown customers are ignored.
func (s *EnrollmentService) setStatusByCustomer(ctx context.Context, event BillingEvent, status models.StudentStatus) error {
	email, _, err := s.resolveCustomer(ctx, event)
	if err != nil || email == "" {
		return err
	}
	student, err := s.Students.StudentByEmail(ctx, email)
	if err != nil {
		return ErrUpstream(err, "Server error")
	}
	if student == nil {
		s.Log.Info("billing event for unknown student", "type", event.Type, "email", email)
		return nil
	}
	if _, err := s.Students.UpdateStudent(ctx, student.ID, StudentUpdate{Status: &status}); err != nil {
		return ErrUpstream(err, "Server error")
	}
	s.Log.Info("student status changed", "email", email, "status", status)
	return nil
}

func (s *EnrollmentService) Settings(student models.Student) SettingsView {
	return SettingsView{
		EmailTool: deref(student.EmailTool),
		HasAPIKey: student.HasAPIKey(),
		Name:      student.Name,
		Email:     student.Email,
		Company:   deref(student.Company),
	}
}

func (s *EnrollmentService) UpdateSettings(ctx context.Context, student models.Student, in SettingsUpdate) error {
	update := StudentUpdate{Company: in.Company}
	if in.EmailTool != nil {
		tool := strings.TrimSpace(*in.EmailTool)
		if tool != "" {
			parsed, err := emailtools.ParseTool(tool)
			if err != nil {
				return ErrUnsupported("Unsupported email tool: " + tool)
			}
			tool = string(parsed)
		}
		update.EmailTool = &tool
	}
	if in.APIKey != nil {
		key := *in.APIKey
		if key != "" && s.Sealer != nil {
			sealed, err := s.Sealer.Seal(key)
			if err != nil {
				return err
			}
			key = sealed
		}
		update.APIKey = &key
	}
	if update.Empty() {
		return ErrInvalidInput("No fields to update")
	}
	if _, err := s.Students.UpdateStudent(ctx, student.ID, update); err != nil {
		return ErrUpstream(err, "Server error")
	}
	return nil
}

func (s *EnrollmentService) Checkout(ctx context.Context, email, name string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrInvalidInput("Email is required")
	}
	checkoutURL, err := s.Billing.CreateCheckout(ctx, email, strings.TrimSpace(name))
	if err != nil {
		return "", ErrUpstream(err, "Failed to start checkout")
	}
	return checkoutURL, nil
}

func (s *EnrollmentService) BillingPortal(ctx context.Context, student models.Student) (string, error) {
	customerID := deref(student.StripeCustomerID)
	if customerID == "" {
		sub, err := s.Billing.CheckSubscription(ctx, student.Email)
		if err != nil {
			return "", ErrUpstream(err, "Server error")
		}
		customerID = sub.CustomerID
	}
	if customerID == "" {
		return "", ErrNotFound("No billing account found")
	}
	portalURL, err := s.Billing.CreatePortal(ctx, customerID)
	if err != nil {
		return "", ErrUpstream(err, "Failed to open billing portal")
	}
	return portalURL, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
