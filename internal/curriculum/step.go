package curriculum

import (
	"regexp"
	"strings"
)

var (
	stepTitleRe = regexp.MustCompile(`(?i)^step\s+\d+\s*:\s*(.+)$`)
	stepTypeRe  = regexp.MustCompile(`(?i)^\*\*type:\s*(\w+)\*\*`)
)

// DecodeStep converts a "Step" section into a Step.
//
// A leading "Step N:" is stripped from the title. The first "**Type: x**" line
// sets the type and everything before and including it is dropped from the
// content. Trailing --- separators are removed.
func DecodeStep(sec Section) Step {
	step := Step{Title: sec.Title, Type: StepRead}
	if m := stepTitleRe.FindStringSubmatch(sec.Title); m != nil {
		step.Title = strings.TrimSpace(m[1])
	}

	lines := strings.Split(sec.Content, "\n")
	for i, line := range lines {
		if m := stepTypeRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			step.Type = ParseStepType(m[1])
			lines = lines[i+1:]
			break
		}
	}

	step.Content = trimSeparators(lines)
	return step
}

// trimSeparators joins lines and drops trailing blank and --- lines.
func trimSeparators(lines []string) string {
	end := len(lines)
	for end > 0 {
		l := strings.TrimSpace(lines[end-1])
		if l != "" && l != frontMatterDelim {
			break
		}
		end--
	}
	return strings.TrimSpace(strings.Join(lines[:end], "\n"))
}
