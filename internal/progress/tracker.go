package progress

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/segmentio/ksuid"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
)

// stepCeiling is the share of a chapter that step completion alone can reach;
// the rest is reserved for the quiz or an explicit completion.
const stepCeiling = 90

// ChapterSource is the read side of the chapter catalog.
type ChapterSource interface {
	GetAllChapters() []curriculum.Chapter
	GetChapter(id int) (curriculum.Chapter, bool)
}

// TrackerConfig holds dependencies for the tracker.
type TrackerConfig struct {
	Chapters ChapterSource
	Clock    func() time.Time // defaults to time.Now().UTC()
	Logger   *slog.Logger
}

// Tracker owns the chapter id → ChapterProgress mapping.
//
// Entries are created on first access and mutated under a per-entry lock, so
// operations on different chapters proceed independently. Notifications are
// published after all locks are released.
type Tracker struct {
	chapters ChapterSource
	now      func() time.Time
	hub      *hub

	mu      sync.RWMutex
	entries map[int]*entry
}

type entry struct {
	mu      sync.Mutex
	p       ChapterProgress
	removed bool
}

// NewTracker creates an empty tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		chapters: cfg.Chapters,
		now:      clock,
		hub:      newHub(log),
		entries:  make(map[int]*entry),
	}
}

// Subscribe registers a change listener with the given buffer size
// (0 selects the default). Callers must Close the subscription when done.
func (t *Tracker) Subscribe(buffer int) *Subscription {
	return t.hub.subscribe(buffer)
}

// Subscribers returns the number of open subscriptions.
func (t *Tracker) Subscribers() int {
	return t.hub.count()
}

// GetProgress returns the progress for a chapter, creating a NotStarted entry if needed.
func (t *Tracker) GetProgress(chapterID int) ChapterProgress {
	for {
		e := t.entry(chapterID)
		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}
		p := e.p
		e.mu.Unlock()
		return p
	}
}

// GetAllProgress returns progress for every catalog chapter in catalog order.
func (t *Tracker) GetAllProgress() []ChapterProgress {
	return lo.Map(t.allChapters(), func(ch curriculum.Chapter, _ int) ChapterProgress {
		return t.GetProgress(ch.ID)
	})
}

// StartChapter moves a NotStarted chapter to InProgress. Otherwise it does nothing.
func (t *Tracker) StartChapter(chapterID int) {
	t.mutate(chapterID, func(p *ChapterProgress, now time.Time) []ChangeKind {
		if p.State != NotStarted {
			return nil
		}
		start(p, now)
		return []ChangeKind{ChangeStarted}
	})
}

// CompleteStep records completion of the step at stepIndex for a catalog chapter.
//
// Indices below the current position are ignored. Step completion drives the
// percentage up to 90 at most. It does not start the chapter; callers are
// expected to call StartChapter first.
func (t *Tracker) CompleteStep(chapterID, stepIndex int) {
	if t.chapters == nil {
		return
	}
	ch, ok := t.chapters.GetChapter(chapterID)
	if !ok {
		return
	}
	total := len(ch.Steps)

	t.mutate(chapterID, func(p *ChapterProgress, _ time.Time) []ChangeKind {
		if stepIndex < p.CurrentStepIndex {
			return nil
		}
		// Saturate instead of wrapping so the position never moves backwards.
		if stepIndex < math.MaxInt {
			p.CurrentStepIndex = stepIndex + 1
		} else {
			p.CurrentStepIndex = math.MaxInt
		}
		if total > 0 {
			p.ProgressPercentage = stepPercentage(p.CurrentStepIndex, total)
		}
		return []ChangeKind{ChangeStepCompleted}
	})
}

// UpdateProgress sets the percentage, clamped to 0..100, starting the chapter
// if needed. Reaching 100 completes the chapter.
func (t *Tracker) UpdateProgress(chapterID, percentage int) {
	t.mutate(chapterID, func(p *ChapterProgress, now time.Time) []ChangeKind {
		var kinds []ChangeKind
		if p.State == NotStarted {
			start(p, now)
			kinds = append(kinds, ChangeStarted)
		}

		p.ProgressPercentage = lo.Clamp(percentage, 0, 100)

		if percentage >= 100 && p.State != Completed {
			p.State = Completed
			p.CompletedAt = &now
			return append(kinds, ChangeCompleted)
		}
		return append(kinds, ChangeUpdated)
	})
}

// CompleteChapter marks a chapter completed from any state.
// StartedAt is only set if it was never set.
func (t *Tracker) CompleteChapter(chapterID int) {
	t.mutate(chapterID, func(p *ChapterProgress, now time.Time) []ChangeKind {
		p.State = Completed
		p.CompletedAt = &now
		p.ProgressPercentage = 100
		if p.StartedAt == nil {
			p.StartedAt = &now
		}
		return []ChangeKind{ChangeCompleted}
	})
}

// ResetChapter forgets a chapter's progress. A notification is sent only if an entry existed.
func (t *Tracker) ResetChapter(chapterID int) {
	t.mu.Lock()
	e, ok := t.entries[chapterID]
	delete(t.entries, chapterID)
	t.mu.Unlock()

	if !ok {
		return
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()

	t.publish(ChangeReset, chapterID, ChapterProgress{ChapterID: chapterID})
}

// ResetAllProgress forgets every entry and always notifies.
func (t *Tracker) ResetAllProgress() {
	t.mu.Lock()
	old := t.entries
	t.entries = make(map[int]*entry)
	t.mu.Unlock()

	for _, e := range old {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
	}

	t.publish(ChangeResetAll, 0, ChapterProgress{})
}

// GetCompletedCount counts catalog chapters whose tracked state is Completed.
func (t *Tracker) GetCompletedCount() int {
	return t.completedIn(t.allChapters())
}

// GetOverallProgressPercentage is the rounded share of completed catalog chapters.
// Total and completed count come from the same catalog snapshot.
func (t *Tracker) GetOverallProgressPercentage() int {
	chapters := t.allChapters()
	if len(chapters) == 0 {
		return 0
	}
	return int(math.RoundToEven(100 * float64(t.completedIn(chapters)) / float64(len(chapters))))
}

func (t *Tracker) completedIn(chapters []curriculum.Chapter) int {
	return lo.CountBy(chapters, func(ch curriculum.Chapter) bool {
		return t.state(ch.ID) == Completed
	})
}

// stepPercentage rounds half to even: 1 of 4 steps gives round(22.5) = 22.
// The float is clamped before conversion so huge step indices cannot overflow int.
func stepPercentage(current, total int) int {
	pct := math.RoundToEven(float64(current) * (stepCeiling / float64(total)))
	return int(math.Max(0, math.Min(pct, stepCeiling)))
}

func start(p *ChapterProgress, now time.Time) {
	p.State = InProgress
	p.StartedAt = &now
	p.ProgressPercentage = 0
	p.CurrentStepIndex = 0
}

func (t *Tracker) allChapters() []curriculum.Chapter {
	if t.chapters == nil {
		return nil
	}
	return t.chapters.GetAllChapters()
}

// state reads a chapter's state without creating an entry.
func (t *Tracker) state(chapterID int) LearningState {
	t.mu.RLock()
	e, ok := t.entries[chapterID]
	t.mu.RUnlock()
	if !ok {
		return NotStarted
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.p.State
}

// entry returns the entry for a chapter, creating it if missing.
func (t *Tracker) entry(chapterID int) *entry {
	t.mu.RLock()
	e, ok := t.entries[chapterID]
	t.mu.RUnlock()
	if ok {
		return e
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[chapterID]; ok {
		return e
	}
	e = &entry{p: ChapterProgress{ChapterID: chapterID, State: NotStarted}}
	t.entries[chapterID] = e
	return e
}

// mutate applies fn to a chapter's entry under its lock and publishes the
// returned change kinds afterwards. Non-positive ids are ignored.
func (t *Tracker) mutate(chapterID int, fn func(p *ChapterProgress, now time.Time) []ChangeKind) {
	if chapterID <= 0 {
		return
	}

	var (
		kinds []ChangeKind
		snap  ChapterProgress
	)
	for {
		e := t.entry(chapterID)
		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}
		kinds = fn(&e.p, t.now())
		snap = e.p
		e.mu.Unlock()
		break
	}

	for _, kind := range kinds {
		t.publish(kind, chapterID, snap)
	}
}

func (t *Tracker) publish(kind ChangeKind, chapterID int, p ChapterProgress) {
	t.hub.publish(Change{
		ID:        ksuid.New().String(),
		Kind:      kind,
		ChapterID: chapterID,
		Progress:  p,
		At:        t.now(),
	})
}
