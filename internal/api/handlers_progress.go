package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/p-n-ai/pai-tutorial/internal/progress"
)

const (
	defaultEventsLimit = 20
	maxEventsLimit     = 100
)

// Progress routes only accept chapters that are in the catalog.
func (s *Server) catalogChapter(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := chapterID(r)
	if !ok {
		jsonError(w, "invalid chapter id", http.StatusBadRequest)
		return 0, false
	}
	if _, ok := s.catalog.GetChapter(id); !ok {
		jsonError(w, "chapter not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"progress":           s.tracker.GetAllProgress(),
		"completed":          s.tracker.GetCompletedCount(),
		"total":              len(s.catalog.GetAllChapters()),
		"overall_percentage": s.tracker.GetOverallProgressPercentage(),
	})
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := s.catalogChapter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.GetProgress(id))
}

func (s *Server) handleStartChapter(w http.ResponseWriter, r *http.Request) {
	id, ok := s.catalogChapter(w, r)
	if !ok {
		return
	}
	s.tracker.StartChapter(id)
	writeJSON(w, http.StatusOK, s.tracker.GetProgress(id))
}

func (s *Server) handleCompleteStep(w http.ResponseWriter, r *http.Request) {
	id, ok := s.catalogChapter(w, r)
	if !ok {
		return
	}
	idx, ok := stepIndex(r)
	if !ok {
		jsonError(w, "invalid step index", http.StatusBadRequest)
		return
	}
	s.tracker.CompleteStep(id, idx)
	writeJSON(w, http.StatusOK, s.tracker.GetProgress(id))
}

func (s *Server) handleProgressEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := s.catalogChapter(w, r)
	if !ok {
		return
	}
	if s.opts.History == nil {
		jsonError(w, "event history is not configured", http.StatusNotFound)
		return
	}

	limit := defaultEventsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxEventsLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	events, err := s.opts.History.RecentEvents(ctx, id, limit)
	if err != nil {
		s.log.Error("recent events failed", "chapter_id", id, "error", err)
		jsonError(w, "failed to load events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []progress.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chapter_id": id,
		"events":     events,
	})
}

type updateProgressRequest struct {
	Percentage *int `json:"percentage"`
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := s.catalogChapter(w, r)
	if !ok {
		return
	}

	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Percentage == nil {
		jsonError(w, "percentage is required", http.StatusBadRequest)
		return
	}

	s.tracker.UpdateProgress(id, *req.Percentage)
	writeJSON(w, http.StatusOK, s.tracker.GetProgress(id))
}

func (s *Server) handleCompleteChapter(w http.ResponseWriter, r *http.Request) {
	id, ok := s.catalogChapter(w, r)
	if !ok {
		return
	}
	s.tracker.CompleteChapter(id)
	writeJSON(w, http.StatusOK, s.tracker.GetProgress(id))
}

func (s *Server) handleResetChapter(w http.ResponseWriter, r *http.Request) {
	id, ok := s.catalogChapter(w, r)
	if !ok {
		return
	}
	s.tracker.ResetChapter(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	s.tracker.ResetAllProgress()
	s.log.Info("all progress reset")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.tracker.WriteReport(&buf); err != nil {
		s.log.Error("progress report failed", "error", err)
		jsonError(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="progress.xlsx"`)
	w.Write(buf.Bytes())
}
