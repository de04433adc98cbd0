package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/seanlongden/asa-student-portal/internal/emailtools"
	"github.com/seanlongden/asa-student-portal/internal/models"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory stand-in for the Postgres store.
type memStore struct {
	mu       sync.Mutex
	seq      int
	fail     bool
	students map[string]*models.Student
	progress map[string]models.Progress
	inputs   map[string]models.Input
	metrics  map[string]models.WeeklyMetric
	leads    []models.Lead
	clients  []models.Client
}

func newMemStore() *memStore {
	return &memStore{
		students: map[string]*models.Student{},
		progress: map[string]models.Progress{},
		inputs:   map[string]models.Input{},
		metrics:  map[string]models.WeeklyMetric{},
	}
}

func (m *memStore) nextID() string {
	m.seq++
	return "id-" + strconv.Itoa(m.seq)
}

func (m *memStore) StudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	for _, s := range m.students {
		if s.Email == email {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) StudentByID(ctx context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *memStore) CreateStudent(ctx context.Context, student models.Student) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return models.Student{}, errStoreDown
	}
	student.ID = m.nextID()
	m.students[student.ID] = &student
	return student, nil
}

func (m *memStore) UpdateStudent(ctx context.Context, id string, u StudentUpdate) (models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return models.Student{}, errStoreDown
	}
	s, ok := m.students[id]
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
	if u.Name != nil {
		s.Name = *u.Name
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

func (m *memStore) ListStudents(ctx context.Context) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Student{}
	for _, s := range m.students {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memStore) ListSyncableStudents(ctx context.Context) ([]models.Student, error) {
	all, _ := m.ListStudents(ctx)
	out := []models.Student{}
	for _, s := range all {
		if s.Status == models.StatusActive && s.EmailTool != nil && s.HasAPIKey() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) ListProgress(ctx context.Context, studentID string) ([]models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	out := []models.Progress{}
	for _, p := range m.progress {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) UpsertProgress(ctx context.Context, p models.Progress) (models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := p.StudentID + "/" + p.ModuleID
	if existing, ok := m.progress[key]; ok {
		p.ID = existing.ID
	} else {
		p.ID = m.nextID()
	}
	m.progress[key] = p
	return p, nil
}

func (m *memStore) ListInputs(ctx context.Context, studentID, moduleID string) ([]models.Input, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	out := []models.Input{}
	for _, in := range m.inputs {
		if in.StudentID == studentID && (moduleID == "" || in.ModuleID == moduleID) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModuleOrder != out[j].ModuleOrder {
			return out[i].ModuleOrder < out[j].ModuleOrder
		}
		return out[i].InputKey < out[j].InputKey
	})
	return out, nil
}

func (m *memStore) UpsertInput(ctx context.Context, in models.Input) (models.Input, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return models.Input{}, errStoreDown
	}
	key := in.StudentID + "/" + in.ModuleID + "/" + in.InputKey
	if existing, ok := m.inputs[key]; ok {
		in.ID = existing.ID
	} else {
		in.ID = m.nextID()
	}
	m.inputs[key] = in
	return in, nil
}

func (m *memStore) UpsertWeeklyMetric(ctx context.Context, metric models.WeeklyMetric) (models.WeeklyMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return models.WeeklyMetric{}, errStoreDown
	}
	key := metric.StudentID + "/" + metric.WeekStarting.Format(DateLayout)
	if existing, ok := m.metrics[key]; ok {
		metric.ID = existing.ID
	} else {
		metric.ID = m.nextID()
	}
	m.metrics[key] = metric
	return metric, nil
}

func (m *memStore) ListWeeklyMetrics(ctx context.Context, studentID string, limit int) ([]models.WeeklyMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.WeeklyMetric{}
	for _, metric := range m.metrics {
		if metric.StudentID == studentID {
			out = append(out, metric)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStarting.After(out[j].WeekStarting) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListLeads(ctx context.Context, studentID string) ([]models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	out := []models.Lead{}
	for _, lead := range m.leads {
		if lead.StudentID == studentID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (m *memStore) ListClients(ctx context.Context, studentID string) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Client{}
	for _, client := range m.clients {
		if client.StudentID == studentID {
			out = append(out, client)
		}
	}
	return out, nil
}

func (m *memStore) CreateLead(ctx context.Context, lead models.Lead) (models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead.ID = m.nextID()
	m.leads = append(m.leads, lead)
	return lead, nil
}

func (m *memStore) CreateClient(ctx context.Context, client models.Client) (models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	client.ID = m.nextID()
	m.clients = append(m.clients, client)
	return client, nil
}

func (m *memStore) addStudent(email string, status models.StudentStatus) *models.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &models.Student{ID: m.nextID(), Email: email, Name: strings.Split(email, "@")[0], Status: status}
	m.students[s.ID] = s
	return s
}

type fakeBilling struct {
	active      map[string]bool
	customers   map[string]Customer
	checkErr    error
	portalFor   string
	checkoutFor string
}

func (f *fakeBilling) CheckSubscription(ctx context.Context, email string) (Subscription, error) {
	if f.checkErr != nil {
		return Subscription{}, f.checkErr
	}
	return Subscription{Active: f.active[email], CustomerID: "cus_" + email}, nil
}

func (f *fakeBilling) CreateCheckout(ctx context.Context, email, name string) (string, error) {
	f.checkoutFor = email
	return "https://checkout.test/" + email, nil
}

func (f *fakeBilling) CreatePortal(ctx context.Context, customerID string) (string, error) {
	f.portalFor = customerID
	return "https://portal.test/" + customerID, nil
}

func (f *fakeBilling) Customer(ctx context.Context, customerID string) (Customer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return Customer{}, errors.New("no such customer")
	}
	return c, nil
}

func (f *fakeBilling) ParseWebhook(payload []byte, signature string) (BillingEvent, error) {
	return BillingEvent{}, errors.New("not used")
}

type sentEmail struct {
	To, Subject, HTML string
}

type fakeNotifier struct {
	sent []sentEmail
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

type fakeFetcher struct {
	metrics     emailtools.Metrics
	err         error
	credentials []string
}

func (f *fakeFetcher) FetchMetrics(ctx context.Context, toolName, credential string) (emailtools.Metrics, error) {
	f.credentials = append(f.credentials, credential)
	if f.err != nil {
		return emailtools.Metrics{}, f.err
	}
	if _, err := emailtools.ParseTool(toolName); err != nil {
		return emailtools.Metrics{}, err
	}
	return f.metrics, nil
}

type recordingPublisher struct {
	events []SyncEvent
}

func (r *recordingPublisher) Publish(event SyncEvent) {
	r.events = append(r.events, event)
}

func strPtr(value string) *string {
	return &value
}
