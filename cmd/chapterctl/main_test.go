package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

const goodDoc = `---
id: 1
number: 1
title: Welcome
category: Introduction
---
## Step 1: Hello
Hi.
`

const badQuizDoc = `---
id: 2
number: 2
title: Components
category: Components
---
## Step 1: Build
**Type: Action**
Build it.

## Quiz
### Question 1
Which one?
- A
- B
**Correct: 5**
`

func writeChapters(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, doc := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLint_Clean(t *testing.T) {
	dir := writeChapters(t, map[string]string{"01.md": goodDoc})

	out, err := execute(t, "lint", "--dir", dir)
	if err != nil {
		t.Fatalf("lint error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 chapters, 0 skipped, 0 errors, 0 warnings") {
		t.Errorf("summary missing:\n%s", out)
	}
}

func TestLint_ReportsProblems(t *testing.T) {
	dir := writeChapters(t, map[string]string{
		"01.md": goodDoc,
		"02.md": badQuizDoc,
		"03.md": "no front matter here",
	})

	out, err := execute(t, "lint", "--dir", dir)
	if err == nil {
		t.Fatal("lint should fail")
	}
	for _, want := range []string{"03.md", "correct option 5 out of range", "2 chapters, 1 skipped, 1 errors"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLint_MissingDirectory(t *testing.T) {
	if _, err := execute(t, "lint", "--dir", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("lint should fail for a missing directory")
	}
}

func TestList(t *testing.T) {
	dir := writeChapters(t, map[string]string{"01.md": goodDoc, "02.md": badQuizDoc})

	out, err := execute(t, "list", "--dir", dir)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	intro := strings.Index(out, "Introduction")
	components := strings.Index(out, "Components (1 steps, 1 questions)")
	if intro < 0 || components < 0 || intro > components {
		t.Errorf("unexpected listing:\n%s", out)
	}
}

func TestExport(t *testing.T) {
	dir := writeChapters(t, map[string]string{"01.md": goodDoc, "02.md": badQuizDoc})

	out, err := execute(t, "export", "--dir", dir)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if got := gjson.Get(out, "meta.count").Int(); got != 2 {
		t.Errorf("meta.count = %d, want 2", got)
	}
	if got := gjson.Get(out, "chapters.1.quiz.questions.0.correct_option_index").Int(); got != 5 {
		t.Errorf("correct_option_index = %d, want 5", got)
	}

	file := filepath.Join(t.TempDir(), "chapters.yaml")
	if _, err := execute(t, "export", "--dir", dir, "--format", "yaml", "--output", file); err != nil {
		t.Fatalf("export yaml error = %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "title: Welcome") {
		t.Errorf("yaml export:\n%s", data)
	}

	if _, err := execute(t, "export", "--dir", dir, "--format", "xml"); err == nil {
		t.Error("export should reject an unknown format")
	}
}

func TestWatch_RequiresURL(t *testing.T) {
	t.Setenv("LEARN_CACHE_URL", "")
	if _, err := execute(t, "watch", "--cache-url", ""); err == nil {
		t.Fatal("watch should require a cache URL")
	}
}

func TestFormatEvent(t *testing.T) {
	got := formatEvent(`{"id":"x","chapter_id":3,"event_type":"step_completed","state":"InProgress","percentage":45,"created_at":"2025-06-01T00:00:00Z"}`)
	for _, want := range []string{"chapter 3", "step_completed", "InProgress", "45%"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent() = %q, missing %q", got, want)
		}
	}
	if got := formatEvent("garbage"); !strings.HasPrefix(got, "? ") {
		t.Errorf("formatEvent(garbage) = %q", got)
	}
}
