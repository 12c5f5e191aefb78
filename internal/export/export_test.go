package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
	"github.com/p-n-ai/pai-tutorial/internal/export"
)

var stamp = time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

func sampleChapters() []curriculum.Chapter {
	return []curriculum.Chapter{
		{
			ID:       1,
			Number:   1,
			Title:    "Welcome",
			Category: curriculum.CategoryIntroduction,
			Steps:    []curriculum.Step{{Title: "Read me", Content: "Hello.", Type: curriculum.StepRead}},
		},
		{
			ID:       5,
			Number:   5,
			Title:    "Components",
			Category: curriculum.CategoryComponents,
			Topics:   []string{"props"},
			Steps:    []curriculum.Step{{Title: "Intro", Content: "Do this.", Type: curriculum.StepAction}},
			Quiz: &curriculum.Quiz{Questions: []curriculum.QuizQuestion{
				{Text: "Pick one", Options: []string{"a", "b"}, CorrectOptionIndex: 1},
			}},
		},
	}
}

func TestBuild(t *testing.T) {
	data, err := export.Build(sampleChapters(), stamp)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	checks := map[string]string{
		"meta.generated_at":       "2025-06-01T08:30:00Z",
		"meta.count":              "2",
		"meta.version":            "1",
		"chapters.1.category":     "Components",
		"chapters.1.steps.0.type": "Action",
		"chapters.0.topics.#":     "0",
	}
	for path, want := range checks {
		if got := gjson.GetBytes(data, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if got := gjson.GetBytes(data, "chapters.1.quiz.questions.0.correct_option_index").Int(); got != 1 {
		t.Errorf("correct_option_index = %d, want 1", got)
	}
	if gjson.GetBytes(data, "chapters.0.quiz").Exists() {
		t.Error("chapter without quiz should omit the quiz field")
	}

	if err := export.Validate(data); err != nil {
		t.Errorf("Validate(Build()) error = %v", err)
	}
}

func TestBuild_Empty(t *testing.T) {
	data, err := export.Build(nil, stamp)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := gjson.GetBytes(data, "chapters.#").Int(); got != 0 {
		t.Errorf("chapters.# = %d, want 0", got)
	}
	if err := export.Validate(data); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing meta", `{"chapters": []}`},
		{"bad category", `{"meta":{"version":1,"count":1,"generated_at":"2025-06-01T08:30:00Z"},
			"chapters":[{"id":1,"number":1,"title":"x","category":"Nope","steps":[]}]}`},
		{"zero id", `{"meta":{"version":1,"count":1,"generated_at":"2025-06-01T08:30:00Z"},
			"chapters":[{"id":0,"number":1,"title":"x","category":"Setup","steps":[]}]}`},
		{"bad step type", `{"meta":{"version":1,"count":1,"generated_at":"2025-06-01T08:30:00Z"},
			"chapters":[{"id":1,"number":1,"title":"x","category":"Setup","steps":[{"title":"s","type":"Watch"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := export.Validate([]byte(tt.doc))
			if err == nil {
				t.Fatal("Validate() error = nil, want schema violation")
			}
			if !export.IsValidationError(err) {
				t.Errorf("error %v is not a validation error", err)
			}
		})
	}
}

func TestValidate_NotJSON(t *testing.T) {
	err := export.Validate([]byte("not json"))
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	if export.IsValidationError(err) {
		t.Error("malformed JSON should not be reported as a schema violation")
	}
}

func TestToYAML(t *testing.T) {
	data, err := export.Build(sampleChapters(), stamp)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	out, err := export.ToYAML(data)
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}
	for _, want := range []string{"meta:", "count: 2", "title: Components", "category: Components"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
}
