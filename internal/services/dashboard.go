package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seanlongden/asa-student-portal/internal/models"
)

const DashboardMetricWeeks = 12

type DashboardStore interface {
	// ListLeads orders by positive reply date, newest first, undated last.
	ListLeads(ctx context.Context, studentID string) ([]models.Lead, error)
	ListClients(ctx context.Context, studentID string) ([]models.Client, error)
	// ListWeeklyMetrics returns at most limit records, newest week first.
	ListWeeklyMetrics(ctx context.Context, studentID string, limit int) ([]models.WeeklyMetric, error)
}

type DashboardData struct {
	Student models.Student
	Leads   []models.Lead
	Clients []models.Client
	Metrics []models.WeeklyMetric
}

type DashboardService struct {
	Store DashboardStore
}

func (s *DashboardService) Dashboard(ctx context.Context, student models.Student) (DashboardData, error) {
	data := DashboardData{Student: student}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leads, err := s.Store.ListLeads(gctx, student.ID)
		data.Leads = leads
		return err
	})
	g.Go(func() error {
		clients, err := s.Store.ListClients(gctx, student.ID)
		data.Clients = clients
		return err
	})
	g.Go(func() error {
		metrics, err := s.Store.ListWeeklyMetrics(gctx, student.ID, DashboardMetricWeeks)
		data.Metrics = metrics
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardData{}, ErrUpstream(err, "Server error")
	}
	return data, nil
}
