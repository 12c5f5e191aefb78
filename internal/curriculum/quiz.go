package curriculum

import (
	"strconv"
	"strings"
)

const (
	correctMarker     = "**Correct:"
	explanationMarker = "**Explanation:"
)

// DecodeQuiz builds a Quiz from the content of a "Quiz" section.
// Only level-3 sections titled "Question..." are decoded, in document order.
func DecodeQuiz(content string) *Quiz {
	quiz := &Quiz{Questions: []QuizQuestion{}}
	for _, sec := range Sectionize(content, 3) {
		if hasPrefixFold(sec.Title, "Question") {
			quiz.Questions = append(quiz.Questions, DecodeQuestion(sec.Content))
		}
	}
	return quiz
}

// DecodeQuestion decodes one question body. Every non-empty line before the
// first "- " bullet is question text, markers included. Options and the
// Correct/Explanation markers are read from the first bullet on, or from the
// top when there are no bullets. A non-numeric correct index leaves
// CorrectOptionIndex at 0.
func DecodeQuestion(content string) QuizQuestion {
	q := QuizQuestion{Options: []string{}}
	lines := strings.Split(content, "\n")

	var text []string
	first := 0
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			first = i
			break
		}
		if line != "" {
			text = append(text, line)
		}
	}
	q.Text = strings.Join(text, " ")

	for _, line := range lines[first:] {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- "):
			q.Options = append(q.Options, unquote(line[2:]))
		case strings.HasPrefix(line, correctMarker):
			if n, err := strconv.Atoi(markerValue(line, correctMarker)); err == nil {
				q.CorrectOptionIndex = n
			}
		case strings.HasPrefix(line, explanationMarker):
			q.Explanation = markerValue(line, explanationMarker)
		}
	}
	return q
}

func markerValue(line, marker string) string {
	v := strings.TrimPrefix(line, marker)
	return strings.TrimSpace(strings.ReplaceAll(v, "**", ""))
}
