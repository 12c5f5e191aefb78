package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Event is a progress change as persisted or published to external sinks.
type Event struct {
	ID         string         `json:"id"`
	ChapterID  int            `json:"chapter_id"`
	EventType  string         `json:"event_type"`
	State      LearningState  `json:"state"`
	Percentage int            `json:"percentage"`
	Data       map[string]any `json:"data,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// EventFromChange converts a tracker notification into an Event.
func EventFromChange(c Change) Event {
	data := map[string]any{
		"current_step_index": c.Progress.CurrentStepIndex,
	}
	if c.Progress.StartedAt != nil {
		data["started_at"] = c.Progress.StartedAt.Format(time.RFC3339)
	}
	if c.Progress.CompletedAt != nil {
		data["completed_at"] = c.Progress.CompletedAt.Format(time.RFC3339)
	}
	return Event{
		ID:         c.ID,
		ChapterID:  c.ChapterID,
		EventType:  string(c.Kind),
		State:      c.Progress.State,
		Percentage: c.Progress.ProgressPercentage,
		Data:       data,
		CreatedAt:  c.At,
	}
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the progress_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.ID == "" {
		return fmt.Errorf("event id is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO progress_events (id, chapter_id, event_type, state, percentage, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
		 ON CONFLICT (id) DO NOTHING`,
		event.ID,
		event.ChapterID,
		event.EventType,
		event.State.String(),
		event.Percentage,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert progress event: %w", err)
	}

	slog.Debug("progress event logged",
		"type", event.EventType,
		"chapter_id", event.ChapterID,
	)
	return nil
}

// RecentEvents returns the newest events for a chapter, newest first.
func (l *PostgresEventLogger) RecentEvents(ctx context.Context, chapterID, limit int) ([]Event, error) {
	if l == nil || l.pool == nil {
		return nil, fmt.Errorf("event logger pool is nil")
	}

	rows, err := l.pool.Query(ctx,
		`SELECT id, chapter_id, event_type, state, percentage, data, created_at
		 FROM progress_events
		 WHERE chapter_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		chapterID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query progress events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev    Event
			state string
			data  []byte
		)
		if err := rows.Scan(&ev.ID, &ev.ChapterID, &ev.EventType, &state, &ev.Percentage, &data, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan progress event: %w", err)
		}
		_ = ev.State.UnmarshalText([]byte(state))
		if len(data) > 0 {
			if err := json.Unmarshal(data, &ev.Data); err != nil {
				return nil, fmt.Errorf("decode event data: %w", err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress events: %w", err)
	}
	return events, nil
}
