//go:build integration

package progress_test

import (
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-tutorial/internal/platform/database"
	"github.com/p-n-ai/pai-tutorial/internal/progress"
)

func TestPostgresEventLogger_RoundTrip(t *testing.T) {
	ctx := t.Context()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("tutorial"),
		postgres.WithUsername("tutorial"),
		postgres.WithPassword("tutorial"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}

	db, err := database.New(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	// second call must be a no-op
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() second call error = %v", err)
	}

	logger := progress.NewPostgresEventLogger(db.Pool)
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	events := []progress.Event{
		{ID: "evt-1", ChapterID: 3, EventType: "started", State: progress.InProgress, CreatedAt: base},
		{ID: "evt-2", ChapterID: 3, EventType: "step_completed", State: progress.InProgress, Percentage: 45,
			Data: map[string]any{"current_step_index": 2}, CreatedAt: base.Add(time.Minute)},
		{ID: "evt-3", ChapterID: 4, EventType: "completed", State: progress.Completed, Percentage: 100, CreatedAt: base},
	}
	for _, ev := range events {
		if err := logger.LogEvent(ev); err != nil {
			t.Fatalf("LogEvent(%s) error = %v", ev.ID, err)
		}
	}
	// duplicate ids are ignored
	if err := logger.LogEvent(events[0]); err != nil {
		t.Fatalf("LogEvent(duplicate) error = %v", err)
	}

	got, err := logger.RecentEvents(ctx, 3, 10)
	if err != nil {
		t.Fatalf("RecentEvents() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(RecentEvents) = %d, want 2", len(got))
	}
	if got[0].ID != "evt-2" || got[0].Percentage != 45 || got[0].State != progress.InProgress {
		t.Errorf("newest event = %+v", got[0])
	}
	if idx, ok := got[0].Data["current_step_index"].(float64); !ok || idx != 2 {
		t.Errorf("Data[current_step_index] = %v", got[0].Data["current_step_index"])
	}
	if got[1].ID != "evt-1" {
		t.Errorf("oldest event id = %q, want evt-1", got[1].ID)
	}
}
