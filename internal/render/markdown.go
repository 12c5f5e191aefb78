// Package render turns chapter markdown into HTML for the dashboard.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
)

// DefaultStyle is the chroma style used for fenced code blocks.
const DefaultStyle = "monokai"

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a renderer with GitHub Flavored Markdown and code highlighting.
// An empty style selects DefaultStyle. Raw HTML in the source is not passed through.
func New(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(style),
				),
			),
		),
	}
}

// Markdown renders src to an HTML fragment.
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// Step is a step with its content rendered.
type Step struct {
	Index int                 `json:"index"`
	Title string              `json:"title"`
	Type  curriculum.StepType `json:"type"`
	HTML  string              `json:"html"`
	Last  bool                `json:"last"`
}

// Step renders the step at index of ch. ok is false when the index is out of range.
func (r *Renderer) Step(ch curriculum.Chapter, index int) (Step, bool, error) {
	if index < 0 || index >= len(ch.Steps) {
		return Step{}, false, nil
	}
	s := ch.Steps[index]
	html, err := r.Markdown(s.Content)
	if err != nil {
		return Step{}, true, fmt.Errorf("step %d of chapter %d: %w", index, ch.ID, err)
	}
	return Step{
		Index: index,
		Title: s.Title,
		Type:  s.Type,
		HTML:  html,
		Last:  index == len(ch.Steps)-1,
	}, true, nil
}
