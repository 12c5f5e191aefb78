package progress

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"
)

// ChangeKind names the tracker operation that produced a Change.
type ChangeKind string

const (
	ChangeStarted       ChangeKind = "started"
	ChangeStepCompleted ChangeKind = "step_completed"
	ChangeUpdated       ChangeKind = "updated"
	ChangeCompleted     ChangeKind = "completed"
	ChangeReset         ChangeKind = "reset"
	ChangeResetAll      ChangeKind = "reset_all"
)

// Change is a notification sent after a tracker mutation.
// Progress is the entry as it was right after the mutation; ChapterID is 0 for ChangeResetAll.
type Change struct {
	ID        string          `json:"id"`
	Kind      ChangeKind      `json:"kind"`
	ChapterID int             `json:"chapter_id"`
	Progress  ChapterProgress `json:"progress"`
	At        time.Time       `json:"at"`
}

const defaultSubscriptionBuffer = 64

// Subscription receives tracker changes on C until Close is called.
// Delivery never blocks the tracker: when the buffer is full the change is dropped.
type Subscription struct {
	C <-chan Change

	id      string
	ch      chan Change
	hub     *hub
	dropped atomic.Uint64
}

// Close stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s.id)
}

// Dropped returns how many changes were discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

type hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
	log  *slog.Logger
}

func newHub(log *slog.Logger) *hub {
	return &hub{
		subs: make(map[string]*Subscription),
		log:  log,
	}
}

func (h *hub) subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = defaultSubscriptionBuffer
	}
	ch := make(chan Change, buffer)
	s := &Subscription{
		C:   ch,
		id:  ksuid.New().String(),
		ch:  ch,
		hub: h,
	}

	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()
	return s
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(s.ch)
	}
}

func (h *hub) publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		select {
		case s.ch <- c:
		default:
			s.dropped.Add(1)
			h.log.Warn("progress subscriber too slow, dropping change",
				"subscription", s.id,
				"kind", c.Kind,
				"chapter_id", c.ChapterID,
			)
		}
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
