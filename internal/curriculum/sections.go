package curriculum

import "strings"

// Section is a heading and the raw text up to the next heading of the same level.
type Section struct {
	Title   string
	Content string
}

// Sectionize splits text into sections at headings of exactly the given level.
// A heading line starts with level '#' characters followed by a space; deeper
// headings stay inside the content. Text before the first heading is discarded.
func Sectionize(text string, level int) []Section {
	marker := strings.Repeat("#", level) + " "

	var (
		sections []Section
		current  *Section
		content  []string
	)
	flush := func() {
		if current != nil {
			current.Content = strings.Join(content, "\n")
			sections = append(sections, *current)
		}
		content = content[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if title, ok := strings.CutPrefix(line, marker); ok {
			flush()
			current = &Section{Title: strings.TrimSpace(title)}
			continue
		}
		if current != nil {
			content = append(content, line)
		}
	}
	flush()

	return sections
}

// hasPrefixFold reports whether s begins with prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && folder.String(s[:len(prefix)]) == folder.String(prefix)
}
