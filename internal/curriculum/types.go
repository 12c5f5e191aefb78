package curriculum

// Category groups chapters into sections of the tutorial.
type Category int

const (
	CategoryIntroduction Category = iota
	CategorySetup
	CategoryAPIDevelopment
	CategoryBlazorBasics
	CategoryComponents
	CategoryStateManagement
	CategoryDashboard
	CategoryAdvanced
	CategoryWrapUp
	CategoryCSharpFundamentals
	CategoryCSharpTypes
	CategoryDataAccess
	CategoryNextSteps
)

// StepType distinguishes informational steps from hands-on ones.
type StepType int

const (
	StepRead StepType = iota
	StepAction
)

// Chapter is one unit of tutorial content, decoded from a markdown document.
// Chapters are immutable once they leave the Catalog.
type Chapter struct {
	ID          int      `json:"id"`
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Route       string   `json:"route,omitempty"`
	Category    Category `json:"category"`
	Topics      []string `json:"topics"`
	KeyPoints   []string `json:"key_points"`
	Steps       []Step   `json:"steps"`
	Quiz        *Quiz    `json:"quiz,omitempty"`
}

// Step is a single section of a chapter, in document order.
type Step struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Type    StepType `json:"type"`
}

// Quiz holds the questions at the end of a chapter.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// QuizQuestion is a multiple-choice question.
// CorrectOptionIndex is 0-based and is not bounds-checked by the parser; see Lint.
type QuizQuestion struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Explanation        string   `json:"explanation"`
}

func newChapter() Chapter {
	return Chapter{
		Topics:    []string{},
		KeyPoints: []string{},
		Steps:     []Step{},
	}
}
