// Package progress tracks per-chapter learning progress in memory and fans out
// change notifications to subscribers.
package progress

import "time"

// LearningState is the per-chapter state machine: NotStarted → InProgress → Completed.
type LearningState int

const (
	NotStarted LearningState = iota
	InProgress
	Completed
)

var stateNames = [...]string{"NotStarted", "InProgress", "Completed"}

var stateIcons = [...]string{"○", "◐", "✓"}

var stateClasses = [...]string{"not-started", "in-progress", "completed"}

func (s LearningState) valid() bool {
	return s >= NotStarted && s <= Completed
}

func (s LearningState) String() string {
	if !s.valid() {
		return stateNames[NotStarted]
	}
	return stateNames[s]
}

// Icon returns the dashboard glyph for a state.
func (s LearningState) Icon() string {
	if !s.valid() {
		return stateIcons[NotStarted]
	}
	return stateIcons[s]
}

// Class returns the CSS class for a state.
func (s LearningState) Class() string {
	if !s.valid() {
		return stateClasses[NotStarted]
	}
	return stateClasses[s]
}

func (s LearningState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *LearningState) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = LearningState(i)
			return nil
		}
	}
	*s = NotStarted
	return nil
}

// ChapterProgress is the tracked progress of one chapter.
type ChapterProgress struct {
	ChapterID          int           `json:"chapter_id"`
	State              LearningState `json:"state"`
	StartedAt          *time.Time    `json:"started_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	ProgressPercentage int           `json:"progress_percentage"`
	CurrentStepIndex   int           `json:"current_step_index"`
}
