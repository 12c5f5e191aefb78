package progress_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/p-n-ai/pai-tutorial/internal/progress"
)

type failingSink struct{ calls int }

func (f *failingSink) LogEvent(progress.Event) error {
	f.calls++
	return errors.New("sink down")
}

func TestDispatcher_Register(t *testing.T) {
	d := progress.NewDispatcher(slog.New(slog.DiscardHandler))
	d.Register("memory", progress.NewMemoryEventLogger())

	if !d.HasSink("memory") {
		t.Error("HasSink(memory) = false, want true")
	}
	if d.HasSink("postgres") {
		t.Error("HasSink(postgres) = true, want false")
	}
}

func TestDispatcher_DispatchContinuesAfterFailure(t *testing.T) {
	d := progress.NewDispatcher(slog.New(slog.DiscardHandler))
	failing := &failingSink{}
	mem := progress.NewMemoryEventLogger()
	d.Register("a-failing", failing)
	d.Register("b-memory", mem)

	d.Dispatch(progress.Change{ID: "x", Kind: progress.ChangeCompleted, ChapterID: 1})

	if failing.calls != 1 {
		t.Errorf("failing sink calls = %d, want 1", failing.calls)
	}
	if got := len(mem.Events()); got != 1 {
		t.Errorf("memory sink events = %d, want 1", got)
	}
}

func TestDispatcher_Run(t *testing.T) {
	tr := newTracker(chapterWithSteps(1, 2))
	mem := progress.NewMemoryEventLogger()
	d := progress.NewDispatcher(slog.New(slog.DiscardHandler))
	d.Register("memory", mem)

	ctx, cancel := context.WithCancel(context.Background())
	sub := tr.Subscribe(8)
	done := make(chan struct{})
	go func() {
		d.Run(ctx, sub)
		close(done)
	}()

	tr.StartChapter(1)
	tr.CompleteChapter(1)

	deadline := time.After(2 * time.Second)
	for len(mem.Events()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("events = %d, want 2", len(mem.Events()))
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if tr.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Run returned, want 0", tr.Subscribers())
	}

	events := mem.Events()
	if events[0].EventType != "started" || events[1].EventType != "completed" {
		t.Errorf("event types = %q, %q", events[0].EventType, events[1].EventType)
	}
}
