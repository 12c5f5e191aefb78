package render_test

import (
	"strings"
	"testing"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
	"github.com/p-n-ai/pai-tutorial/internal/render"
)

func TestRenderer_Markdown(t *testing.T) {
	r := render.New("")

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"paragraph", "Do this.", []string{"<p>Do this.</p>"}},
		{"emphasis", "**bold** and *em*", []string{"<strong>bold</strong>", "<em>em</em>"}},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
		{"strikethrough", "~~gone~~", []string{"<del>gone</del>"}},
		{"code block", "```go\nfunc main() {}\n```", []string{"<pre", "main"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Markdown(tt.src)
			if err != nil {
				t.Fatalf("Markdown() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Markdown(%q) = %q, want it to contain %q", tt.src, got, w)
				}
			}
		})
	}
}

func TestRenderer_Markdown_OmitsRawHTML(t *testing.T) {
	got, err := render.New("").Markdown("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML passed through: %q", got)
	}
}

func TestRenderer_Step(t *testing.T) {
	ch := curriculum.Chapter{
		ID: 2,
		Steps: []curriculum.Step{
			{Title: "Intro", Content: "Read *this*.", Type: curriculum.StepRead},
			{Title: "Try", Content: "Run it.", Type: curriculum.StepAction},
		},
	}
	r := render.New("")

	s, ok, err := r.Step(ch, 1)
	if err != nil || !ok {
		t.Fatalf("Step() ok = %v, err = %v", ok, err)
	}
	if s.Title != "Try" || s.Type != curriculum.StepAction || !s.Last {
		t.Errorf("Step() = %+v", s)
	}
	if !strings.Contains(s.HTML, "<p>Run it.</p>") {
		t.Errorf("HTML = %q", s.HTML)
	}

	for _, idx := range []int{-1, 2} {
		if _, ok, _ := r.Step(ch, idx); ok {
			t.Errorf("Step(%d) ok = true, want false", idx)
		}
	}
}
