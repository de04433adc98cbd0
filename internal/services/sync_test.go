package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seanlongden/asa-student-portal/internal/emailtools"
	"github.com/seanlongden/asa-student-portal/internal/models"
)

func newSyncFixture(t *testing.T) (*MetricsSync, *memStore, *fakeFetcher, *recordingPublisher) {
	t.Helper()
	sealer, err := NewKeySealer("sync-secret")
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	store := newMemStore()
	fetcher := &fakeFetcher{metrics: emailtools.Metrics{EmailsSent: 200, Replies: 10, PositiveReplies: 4, OpenRate: 50, BounceRate: 1.5}}
	publisher := &recordingPublisher{}
	svc := &MetricsSync{
		Store:     store,
		Fetcher:   fetcher,
		Sealer:    sealer,
		Publisher: publisher,
		// Thursday
		Now: func() time.Time { return time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC) },
	}
	return svc, store, fetcher, publisher
}

func connected(t *testing.T, store *memStore, sealer *KeySealer, email, tool, key string) models.Student {
	t.Helper()
	s := store.addStudent(email, models.StatusActive)
	sealed, err := sealer.Seal(key)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	s.EmailTool = strPtr(tool)
	s.APIKey = strPtr(sealed)
	return *s
}

func TestSyncUpsertsWeek(t *testing.T) {
	svc, store, fetcher, publisher := newSyncFixture(t)
	student := connected(t, store, svc.Sealer, "alice@x.com", "instantly", "inst-key")
	ctx := context.Background()

	result, err := svc.Sync(ctx, student)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.WeekStarting != "2026-01-12" {
		t.Fatalf("expected monday week start, got %s", result.WeekStarting)
	}
	if result.Metrics.EmailsSent != 200 || fetcher.credentials[0] != "inst-key" {
		t.Fatalf("unexpected result %+v with credential %q", result, fetcher.credentials[0])
	}

	fetcher.metrics.EmailsSent = 250
	if _, err := svc.Sync(ctx, student); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(store.metrics) != 1 {
		t.Fatalf("expected one weekly record, got %d", len(store.metrics))
	}
	for _, metric := range store.metrics {
		if metric.EmailsSent != 250 {
			t.Fatalf("expected record overwritten, got %d", metric.EmailsSent)
		}
	}
	if len(publisher.events) != 2 || !publisher.events[0].Success || publisher.events[0].WeekStarting != "2026-01-12" {
		t.Fatalf("unexpected events %+v", publisher.events)
	}
}

func TestSyncLegacyPlaintextKey(t *testing.T) {
	svc, store, fetcher, _ := newSyncFixture(t)
	s := store.addStudent("old@x.com", models.StatusActive)
	s.EmailTool = strPtr("smartlead")
	s.APIKey = strPtr("plain-key")
	if _, err := svc.Sync(context.Background(), *s); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if fetcher.credentials[0] != "plain-key" {
		t.Fatalf("expected plaintext key passed through, got %q", fetcher.credentials[0])
	}
}

func TestSyncErrors(t *testing.T) {
	svc, store, fetcher, publisher := newSyncFixture(t)
	ctx := context.Background()

	bare := store.addStudent("bare@x.com", models.StatusActive)
	if _, err := svc.Sync(ctx, *bare); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}

	odd := connected(t, store, svc.Sealer, "odd@x.com", "lemlist", "k")
	if _, err := svc.Sync(ctx, odd); KindOf(err) != KindUnsupported {
		t.Fatalf("expected unsupported, got %v", err)
	}

	fetcher.err = &emailtools.HTTPError{Provider: "instantly", StatusCode: 401, Body: "bad key"}
	student := connected(t, store, svc.Sealer, "alice@x.com", "instantly", "k")
	if _, err := svc.Sync(ctx, student); KindOf(err) != KindUpstream {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if len(store.metrics) != 0 {
		t.Fatalf("failed syncs must not write")
	}
	last := publisher.events[len(publisher.events)-1]
	if last.Success || last.Error != "Failed to sync metrics" {
		t.Fatalf("expected failure event without the upstream cause, got %+v", last)
	}
}

func TestSyncAllContinuesPastFailures(t *testing.T) {
	svc, store, fetcher, _ := newSyncFixture(t)
	connected(t, store, svc.Sealer, "a@x.com", "instantly", "good")
	connected(t, store, svc.Sealer, "b@x.com", "lemlist", "bad-tool")
	connected(t, store, svc.Sealer, "c@x.com", "woodpecker", "good")
	churned := store.addStudent("d@x.com", models.StatusChurned)
	churned.EmailTool = strPtr("instantly")
	churned.APIKey = strPtr("k")

	summary, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("sync all: %v", err)
	}
	if summary != (SyncSummary{Attempted: 3, Succeeded: 2, Failed: 1}) {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(fetcher.credentials) != 3 {
		t.Fatalf("churned students must be skipped")
	}
}

func TestSyncAllHonoursCancellation(t *testing.T) {
	svc, store, _, _ := newSyncFixture(t)
	connected(t, store, svc.Sealer, "a@x.com", "instantly", "k")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := svc.SyncAll(ctx)
	if !errors.Is(err, context.Canceled) || summary.Attempted != 0 {
		t.Fatalf("expected cancelled run, got %+v %v", summary, err)
	}
}
