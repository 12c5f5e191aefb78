package api

import (
	"net/http"

	"github.com/samber/lo"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
	"github.com/p-n-ai/pai-tutorial/internal/export"
	"github.com/p-n-ai/pai-tutorial/internal/progress"
)

// chapterSummary is a chapter as shown in lists, without step content.
type chapterSummary struct {
	ID              int                      `json:"id"`
	Number          int                      `json:"number"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Route           string                   `json:"route,omitempty"`
	Category        curriculum.Category      `json:"category"`
	CategoryDisplay string                   `json:"category_display"`
	Topics          []string                 `json:"topics"`
	StepCount       int                      `json:"step_count"`
	HasQuiz         bool                     `json:"has_quiz"`
	Progress        progress.ChapterProgress `json:"progress"`
	StateIcon       string                   `json:"state_icon"`
	StateClass      string                   `json:"state_class"`
}

func (s *Server) summarize(ch curriculum.Chapter) chapterSummary {
	p := s.tracker.GetProgress(ch.ID)
	return chapterSummary{
		ID:              ch.ID,
		Number:          ch.Number,
		Title:           ch.Title,
		Description:     ch.Description,
		Route:           ch.Route,
		Category:        ch.Category,
		CategoryDisplay: ch.Category.DisplayName(),
		Topics:          ch.Topics,
		StepCount:       len(ch.Steps),
		HasQuiz:         ch.Quiz != nil && len(ch.Quiz.Questions) > 0,
		Progress:        p,
		StateIcon:       p.State.Icon(),
		StateClass:      p.State.Class(),
	}
}

func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	categories := lo.Map(curriculum.Categories(), func(c curriculum.Category, _ int) map[string]string {
		return map[string]string{"name": c.String(), "display_name": c.DisplayName()}
	})
	states := lo.Map([]progress.LearningState{progress.NotStarted, progress.InProgress, progress.Completed},
		func(st progress.LearningState, _ int) map[string]string {
			return map[string]string{"name": st.String(), "icon": st.Icon(), "class": st.Class()}
		})

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
		"states":     states,
		"step_types": []string{curriculum.StepRead.String(), curriculum.StepAction.String()},
	})
}

func (s *Server) handleListChapters(w http.ResponseWriter, r *http.Request) {
	chapters := s.catalog.GetAllChapters()
	writeJSON(w, http.StatusOK, map[string]any{
		"chapters":           lo.Map(chapters, func(ch curriculum.Chapter, _ int) chapterSummary { return s.summarize(ch) }),
		"completed":          s.tracker.GetCompletedCount(),
		"overall_percentage": s.tracker.GetOverallProgressPercentage(),
	})
}

type categoryGroup struct {
	Category    curriculum.Category `json:"category"`
	DisplayName string              `json:"display_name"`
	Chapters    []chapterSummary    `json:"chapters"`
}

// handleChaptersByCategory lists non-empty categories in declaration order.
func (s *Server) handleChaptersByCategory(w http.ResponseWriter, r *http.Request) {
	groups := s.catalog.GetChaptersByCategory()

	var out []categoryGroup
	for _, c := range curriculum.Categories() {
		chapters, ok := groups[c]
		if !ok {
			continue
		}
		out = append(out, categoryGroup{
			Category:    c,
			DisplayName: c.DisplayName(),
			Chapters:    lo.Map(chapters, func(ch curriculum.Chapter, _ int) chapterSummary { return s.summarize(ch) }),
		})
	}
	if out == nil {
		out = []categoryGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) handleGetChapter(w http.ResponseWriter, r *http.Request) {
	id, ok := chapterID(r)
	if !ok {
		jsonError(w, "invalid chapter id", http.StatusBadRequest)
		return
	}
	ch, ok := s.catalog.GetChapter(id)
	if !ok {
		jsonError(w, "chapter not found", http.StatusNotFound)
		return
	}

	description, err := s.renderer.Markdown(ch.Description)
	if err != nil {
		s.log.Error("render chapter description failed", "chapter_id", id, "error", err)
		jsonError(w, "failed to render chapter", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"chapter":          ch,
		"description_html": description,
		"category_display": ch.Category.DisplayName(),
		"progress":         s.tracker.GetProgress(id),
	})
}

func (s *Server) handleGetStep(w http.ResponseWriter, r *http.Request) {
	id, ok := chapterID(r)
	if !ok {
		jsonError(w, "invalid chapter id", http.StatusBadRequest)
		return
	}
	idx, ok := stepIndex(r)
	if !ok {
		jsonError(w, "invalid step index", http.StatusBadRequest)
		return
	}
	ch, ok := s.catalog.GetChapter(id)
	if !ok {
		jsonError(w, "chapter not found", http.StatusNotFound)
		return
	}

	step, ok, err := s.renderer.Step(ch, idx)
	if err != nil {
		s.log.Error("render step failed", "chapter_id", id, "step", idx, "error", err)
		jsonError(w, "failed to render step", http.StatusInternalServerError)
		return
	}
	if !ok {
		jsonError(w, "step not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"chapter_id":  id,
		"step":        step,
		"total_steps": len(ch.Steps),
		"progress":    s.tracker.GetProgress(id),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "yaml" {
		jsonError(w, "format must be json or yaml", http.StatusBadRequest)
		return
	}

	data, err := export.Build(s.catalog.GetAllChapters(), s.opts.Clock())
	if err != nil {
		s.log.Error("build export failed", "error", err)
		jsonError(w, "failed to build export", http.StatusInternalServerError)
		return
	}

	contentType := "application/json"
	if format == "yaml" {
		if data, err = export.ToYAML(data); err != nil {
			s.log.Error("convert export failed", "error", err)
			jsonError(w, "failed to build export", http.StatusInternalServerError)
			return
		}
		contentType = "application/yaml"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="chapters.`+format+`"`)
	w.Write(data)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.catalog.ReloadChapters()
	chapters := s.catalog.GetAllChapters()

	skipped := lo.Map(s.catalog.Skipped(), func(e *curriculum.DocumentError, _ int) map[string]string {
		return map[string]string{"path": e.Path, "error": e.Err.Error()}
	})
	s.log.Info("chapters reloaded", "count", len(chapters), "skipped", len(skipped))

	writeJSON(w, http.StatusOK, map[string]any{
		"chapters": len(chapters),
		"skipped":  skipped,
	})
}
