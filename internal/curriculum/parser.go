package curriculum

import "fmt"

// Parser turns one markdown document into a Chapter.
type Parser interface {
	Parse(doc string) (Chapter, error)
}

// MarkdownParser assembles chapters from the authoring format: front matter,
// "## Step N: ..." sections and an optional "## Quiz" section.
type MarkdownParser struct {
	Metadata MetadataDecoder // defaults to LineDecoder
}

// NewParser returns a MarkdownParser for the given front matter mode ("scan" or "yaml").
func NewParser(mode string) (*MarkdownParser, error) {
	switch mode {
	case "", "scan":
		return &MarkdownParser{Metadata: LineDecoder{}}, nil
	case "yaml":
		return &MarkdownParser{Metadata: YAMLDecoder{}}, nil
	default:
		return nil, fmt.Errorf("unknown front matter mode %q", mode)
	}
}

func (p *MarkdownParser) Parse(doc string) (Chapter, error) {
	fm := SplitFrontMatter(doc)
	if err := fm.Err(); err != nil {
		return Chapter{}, err
	}

	dec := p.Metadata
	if dec == nil {
		dec = LineDecoder{}
	}

	ch := newChapter()
	if err := dec.DecodeMetadata(fm.Meta, &ch); err != nil {
		return Chapter{}, err
	}

	for _, sec := range Sectionize(fm.Body, 2) {
		switch {
		case hasPrefixFold(sec.Title, "Step"):
			ch.Steps = append(ch.Steps, DecodeStep(sec))
		case folder.String(sec.Title) == "quiz":
			// A later quiz section replaces an earlier one.
			ch.Quiz = DecodeQuiz(sec.Content)
		}
	}

	return ch, nil
}
