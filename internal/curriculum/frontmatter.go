package curriculum

import (
	"errors"
	"strings"
)

const frontMatterDelim = "---"

var (
	// ErrNoFrontMatter is returned when a document has no opening --- line.
	ErrNoFrontMatter = errors.New("front matter not found")
	// ErrUnterminatedFrontMatter is returned when the closing --- line is missing.
	ErrUnterminatedFrontMatter = errors.New("front matter not terminated")
)

// FrontMatter is the result of splitting a document.
type FrontMatter struct {
	Meta   string
	Body   string
	Found  bool // an opening --- line was seen
	Closed bool // the closing --- line was seen
}

// SplitFrontMatter separates the metadata block from the body.
//
// Lines before the first standalone --- are dropped. The block ends at the next
// standalone --- and everything after it is body. Without an opening ---, the
// whole input is returned as body with empty metadata.
func SplitFrontMatter(doc string) FrontMatter {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	lines := strings.Split(doc, "\n")

	open := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == frontMatterDelim {
			open = i
			break
		}
	}
	if open < 0 {
		return FrontMatter{Body: doc}
	}

	for i := open + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelim {
			return FrontMatter{
				Meta:   strings.Join(lines[open+1:i], "\n"),
				Body:   strings.Join(lines[i+1:], "\n"),
				Found:  true,
				Closed: true,
			}
		}
	}

	return FrontMatter{
		Meta:  strings.Join(lines[open+1:], "\n"),
		Found: true,
	}
}

// Err reports why the split is unusable for building a chapter, or nil.
func (fm FrontMatter) Err() error {
	switch {
	case !fm.Found:
		return ErrNoFrontMatter
	case !fm.Closed:
		return ErrUnterminatedFrontMatter
	}
	return nil
}
