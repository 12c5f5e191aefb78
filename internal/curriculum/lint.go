package curriculum

import "fmt"

// Severity of a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a content problem the parser tolerates but authors should fix.
type Issue struct {
	ChapterID int      `json:"chapter_id"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("chapter %d: %s: %s", i.ChapterID, i.Severity, i.Message)
}

// Lint reports problems in parsed chapters without changing them.
func Lint(chapters []Chapter) []Issue {
	var issues []Issue
	add := func(ch Chapter, sev Severity, format string, args ...any) {
		issues = append(issues, Issue{ChapterID: ch.ID, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	ids := make(map[int]bool)
	numbers := make(map[int]bool)
	for _, ch := range chapters {
		if ch.ID <= 0 {
			add(ch, SeverityError, "missing or invalid id")
		}
		if ids[ch.ID] {
			add(ch, SeverityError, "duplicate id %d", ch.ID)
		}
		if numbers[ch.Number] {
			add(ch, SeverityError, "duplicate number %d", ch.Number)
		}
		ids[ch.ID] = true
		numbers[ch.Number] = true

		if ch.Title == "" {
			add(ch, SeverityWarning, "missing title")
		}
		if len(ch.Steps) == 0 {
			add(ch, SeverityWarning, "no steps")
		}
		if ch.Quiz == nil {
			continue
		}
		for i, q := range ch.Quiz.Questions {
			switch {
			case len(q.Options) == 0:
				add(ch, SeverityError, "question %d has no options", i+1)
			case q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options):
				add(ch, SeverityError, "question %d: correct option %d out of range (%d options)",
					i+1, q.CorrectOptionIndex, len(q.Options))
			}
			if q.Text == "" {
				add(ch, SeverityWarning, "question %d has no text", i+1)
			}
		}
	}
	return issues
}
