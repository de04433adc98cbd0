package services

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/seanlongden/asa-student-portal/internal/emailtools"
	"github.com/seanlongden/asa-student-portal/internal/logger"
	"github.com/seanlongden/asa-student-portal/internal/models"
)

var syncOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_metrics_sync_total",
	Help: "Weekly metrics sync attempts by tool and outcome.",
}, []string{"tool", "outcome"})

type MetricsStore interface {
	UpsertWeeklyMetric(ctx context.Context, metric models.WeeklyMetric) (models.WeeklyMetric, error)
	// ListSyncableStudents returns Active students with a tool and key set.
	ListSyncableStudents(ctx context.Context) ([]models.Student, error)
}

type MetricsFetcher interface {
	FetchMetrics(ctx context.Context, toolName, credential string) (emailtools.Metrics, error)
}

type SyncResult struct {
	Metrics      emailtools.Metrics `json:"metrics"`
	WeekStarting string             `json:"weekStarting"`
}

type SyncSummary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type MetricsSync struct {
	Store     MetricsStore
	Fetcher   MetricsFetcher
	Sealer    *KeySealer
	Publisher SyncPublisher
	Log       *logger.Logger
	Now       func() time.Time
}

func (s *MetricsSync) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Sync pulls this week's aggregate for the student's connected tool and
// overwrites the week's record, so repeated syncs in one week keep one row.
// Published events carry the caller-facing message, never the upstream cause.
func (s *MetricsSync) Sync(ctx context.Context, student models.Student) (SyncResult, error) {
	tool := deref(student.EmailTool)
	if tool == "" || !student.HasAPIKey() {
		return SyncResult{}, ErrInvalidInput("No email tool connected. Go to Settings to connect your tool.")
	}
	result, err := s.sync(ctx, student, tool)
	event := SyncEvent{StudentID: student.ID, Email: student.Email, Tool: tool, At: s.now().UTC()}
	if err != nil {
		syncOutcomes.WithLabelValues(tool, "failure").Inc()
		event.Error = "Failed to sync metrics"
		var serr ServiceError
		if errors.As(err, &serr) {
			event.Error = serr.Message
		}
	} else {
		syncOutcomes.WithLabelValues(tool, "success").Inc()
		event.Success = true
		event.WeekStarting = result.WeekStarting
	}
	if s.Publisher != nil {
		s.Publisher.Publish(event)
	}
	return result, err
}

func (s *MetricsSync) sync(ctx context.Context, student models.Student, tool string) (SyncResult, error) {
	credential := deref(student.APIKey)
	if s.Sealer != nil {
		opened, err := s.Sealer.Open(credential)
		if err != nil {
			return SyncResult{}, ErrInvalidInput("Stored API key could not be read. Reconnect your tool in Settings.")
		}
		credential = opened
	}
	metrics, err := s.Fetcher.FetchMetrics(ctx, tool, credential)
	if err != nil {
		if errors.Is(err, emailtools.ErrUnsupportedTool) {
			return SyncResult{}, ErrUnsupported("Unsupported email tool: " + tool)
		}
		s.Log.Error("metrics fetch failed", "student", student.ID, "tool", tool, "error", err)
		return SyncResult{}, ErrUpstream(err, "Failed to sync metrics")
	}
	week := WeekStarting(s.now())
	_, err = s.Store.UpsertWeeklyMetric(ctx, models.WeeklyMetric{
		StudentID:       student.ID,
		WeekStarting:    week,
		EmailsSent:      metrics.EmailsSent,
		Replies:         metrics.Replies,
		PositiveReplies: metrics.PositiveReplies,
		OpenRate:        metrics.OpenRate,
		BounceRate:      metrics.BounceRate,
		SyncedAt:        s.now().UTC(),
	})
	if err != nil {
		return SyncResult{}, ErrUpstream(err, "Server error")
	}
	return SyncResult{Metrics: metrics, WeekStarting: week.Format(DateLayout)}, nil
}

// SyncAll syncs every connected Active student in turn. A failing student is
// logged and counted; the run continues unless ctx is done.
func (s *MetricsSync) SyncAll(ctx context.Context) (SyncSummary, error) {
	students, err := s.Store.ListSyncableStudents(ctx)
	if err != nil {
		return SyncSummary{}, ErrUpstream(err, "Server error")
	}
	summary := SyncSummary{}
	for _, student := range students {
		if ctx.Err() != nil {
			break
		}
		summary.Attempted++
		if _, err := s.Sync(ctx, student); err != nil {
			summary.Failed++
			s.Log.Warn("weekly sync failed", "student", student.ID, "error", err)
			continue
		}
		summary.Succeeded++
	}
	s.Log.Info("weekly sync finished", "attempted", summary.Attempted, "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, ctx.Err()
}
