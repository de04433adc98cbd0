package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/seanlongden/asa-student-portal/internal/emailtools"
	"github.com/seanlongden/asa-student-portal/internal/models"
	"github.com/seanlongden/asa-student-portal/internal/services"
)

var errDown = errors.New("connection refused")

type fakeStore struct {
	mu       sync.Mutex
	seq      int
	students map[string]*models.Student
	progress map[string]models.Progress
	inputs   map[string]models.Input
	metrics  []models.WeeklyMetric
	leads    []models.Lead
	clients  []models.Client
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		students: map[string]*models.Student{},
		progress: map[string]models.Progress{},
		inputs:   map[string]models.Input{},
	}
}

func (f *fakeStore) nextID() string {
	f.seq++
	return "id-" + strconv.Itoa(f.seq)
}

func (f *fakeStore) add(student models.Student) models.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	student.ID = f.nextID()
	if student.Status == "" {
		student.Status = models.StatusActive
	}
	f.students[student.ID] = &student
	return student
}

func (f *fakeStore) byEmail(email string) *models.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.students {
		if s.Email == email {
			copied := *s
			return &copied
		}
	}
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) StudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	return f.byEmail(email), nil
}

func (f *fakeStore) StudentByID(ctx context.Context, id string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	return f.add(student), nil
}

func (f *fakeStore) UpdateStudent(ctx context.Context, id string, u services.StudentUpdate) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return models.Student{}, errors.New("no such student")
	}
	set := func(dst **string, src *string) {
		if src == nil {
			return
		}
		if *src == "" {
			*dst = nil
			return
		}
		value := *src
		*dst = &value
	}
	set(&s.Company, u.Company)
	set(&s.EmailTool, u.EmailTool)
	set(&s.APIKey, u.APIKey)
	set(&s.StripeCustomerID, u.StripeCustomerID)
	if u.Status != nil {
		s.Status = *u.Status
	}
	return *s, nil
}

func (f *fakeStore) ListStudents(ctx context.Context) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Student{}
	for _, s := range f.students {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeStore) ListSyncableStudents(ctx context.Context) ([]models.Student, error) {
	all, _ := f.ListStudents(ctx)
	out := []models.Student{}
	for _, s := range all {
		if s.Status == models.StatusActive && s.EmailTool != nil && s.HasAPIKey() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListProgress(ctx context.Context, studentID string) ([]models.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Progress{}
	for _, p := range f.progress {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertProgress(ctx context.Context, p models.Progress) (models.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := p.StudentID + "/" + p.ModuleID
	if existing, ok := f.progress[key]; ok {
		p.ID = existing.ID
	} else {
		p.ID = f.nextID()
	}
	f.progress[key] = p
	return p, nil
}

func (f *fakeStore) ListInputs(ctx context.Context, studentID, moduleID string) ([]models.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Input{}
	for _, in := range f.inputs {
		if in.StudentID == studentID && (moduleID == "" || in.ModuleID == moduleID) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InputKey < out[j].InputKey })
	return out, nil
}

func (f *fakeStore) UpsertInput(ctx context.Context, in models.Input) (models.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := in.StudentID + "/" + in.ModuleID + "/" + in.InputKey
	if existing, ok := f.inputs[key]; ok {
		in.ID = existing.ID
	} else {
		in.ID = f.nextID()
	}
	f.inputs[key] = in
	return in, nil
}

func (f *fakeStore) UpsertWeeklyMetric(ctx context.Context, m models.WeeklyMetric) (models.WeeklyMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.metrics {
		if existing.StudentID == m.StudentID && existing.WeekStarting.Equal(m.WeekStarting) {
			m.ID = existing.ID
			f.metrics[i] = m
			return m, nil
		}
	}
	m.ID = f.nextID()
	f.metrics = append(f.metrics, m)
	return m, nil
}

func (f *fakeStore) ListWeeklyMetrics(ctx context.Context, studentID string, limit int) ([]models.WeeklyMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.WeeklyMetric{}
	for _, m := range f.metrics {
		if m.StudentID == studentID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) ListLeads(ctx context.Context, studentID string) ([]models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Lead{}
	for _, l := range f.leads {
		if l.StudentID == studentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead.ID = f.nextID()
	f.leads = append(f.leads, lead)
	return lead, nil
}

func (f *fakeStore) ListClients(ctx context.Context, studentID string) ([]models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Client{}
	for _, c := range f.clients {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateClient(ctx context.Context, client models.Client) (models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	client.ID = f.nextID()
	f.clients = append(f.clients, client)
	return client, nil
}

// fakeBilling treats emails in active as subscribed. Webhooks carry a JSON
// encoded services.BillingEvent and verify only with the "valid" signature.
type fakeBilling struct {
	mu       sync.Mutex
	active   map[string]bool
	checkErr error
}

func (b *fakeBilling) setActive(email string, active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		b.active = map[string]bool{}
	}
	b.active[strings.ToLower(email)] = active
}

func (b *fakeBilling) CheckSubscription(ctx context.Context, email string) (services.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.checkErr != nil {
		return services.Subscription{}, b.checkErr
	}
	if !b.active[strings.ToLower(email)] {
		return services.Subscription{}, nil
	}
	return services.Subscription{Active: true, CustomerID: "cus_" + email}, nil
}

func (b *fakeBilling) CreateCheckout(ctx context.Context, email, name string) (string, error) {
	return "https://checkout.test/" + email, nil
}

func (b *fakeBilling) CreatePortal(ctx context.Context, customerID string) (string, error) {
	return "https://billing.test/" + customerID, nil
}

func (b *fakeBilling) Customer(ctx context.Context, customerID string) (services.Customer, error) {
	return services.Customer{}, errDown
}

func (b *fakeBilling) ParseWebhook(payload []byte, signature string) (services.BillingEvent, error) {
	if signature != "valid" {
		return services.BillingEvent{}, errors.New("signature mismatch")
	}
	var event services.BillingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return services.BillingEvent{}, err
	}
	return event, nil
}

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (n *fakeNotifier) Send(ctx context.Context, to, subject, html string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeFetcher struct {
	metrics emailtools.Metrics
	err     error
}

func (f fakeFetcher) FetchMetrics(ctx context.Context, toolName, credential string) (emailtools.Metrics, error) {
	if f.err != nil {
		return emailtools.Metrics{}, f.err
	}
	return f.metrics, nil
}
