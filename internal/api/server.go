// Package api serves the tutorial dashboard's HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
	"github.com/p-n-ai/pai-tutorial/internal/progress"
	"github.com/p-n-ai/pai-tutorial/internal/render"
)

// Catalog is the chapter catalog as the API uses it.
type Catalog interface {
	GetAllChapters() []curriculum.Chapter
	GetChapter(id int) (curriculum.Chapter, bool)
	GetChaptersByCategory() map[curriculum.Category][]curriculum.Chapter
	ReloadChapters()
	Skipped() []*curriculum.DocumentError
}

// HealthChecker is implemented by backing services checked by /readyz.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EventHistory reads persisted progress events.
type EventHistory interface {
	RecentEvents(ctx context.Context, chapterID, limit int) ([]progress.Event, error)
}

// Options configures optional server behavior.
type Options struct {
	AdminKeyHash string                   // bcrypt hash; empty leaves admin routes open
	EventsBuffer int                      // per-websocket notification buffer
	Checks       map[string]HealthChecker // dependencies reported by /readyz
	History      EventHistory             // nil disables /api/progress/{id}/events
	Clock        func() time.Time
}

// Server is the HTTP API server for the tutorial dashboard.
type Server struct {
	router   chi.Router
	catalog  Catalog
	tracker  *progress.Tracker
	renderer *render.Renderer
	log      *slog.Logger
	opts     Options
}

// NewServer creates and configures the HTTP server.
func NewServer(catalog Catalog, tracker *progress.Tracker, renderer *render.Renderer, log *slog.Logger, opts Options) *Server {
	if log == nil {
		log = slog.Default()
	}
	if renderer == nil {
		renderer = render.New("")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Server{
		catalog:  catalog,
		tracker:  tracker,
		renderer: renderer,
		log:      log,
		opts:     opts,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/ws/progress", s.handleProgressFeed)

	r.Route("/api", func(r chi.Router) {
		r.Get("/lookups", s.handleLookups)

		r.Route("/chapters", func(r chi.Router) {
			r.Get("/", s.handleListChapters)
			r.Get("/by-category", s.handleChaptersByCategory)
			r.Get("/export", s.handleExport)
			r.With(AdminAuth(s.opts.AdminKeyHash, s.log)).Post("/reload", s.handleReload)
			r.Get("/{id}", s.handleGetChapter)
			r.Get("/{id}/steps/{index}", s.handleGetStep)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/", s.handleListProgress)
			r.Get("/report.xlsx", s.handleReport)
			r.With(AdminAuth(s.opts.AdminKeyHash, s.log)).Delete("/", s.handleResetAll)
			r.Get("/{id}", s.handleGetProgress)
			r.Get("/{id}/events", s.handleProgressEvents)
			r.Put("/{id}", s.handleUpdateProgress)
			r.Delete("/{id}", s.handleResetChapter)
			r.Post("/{id}/start", s.handleStartChapter)
			r.Post("/{id}/complete", s.handleCompleteChapter)
			r.Post("/{id}/steps/{index}/complete", s.handleCompleteStep)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.opts.Checks))
	for name, c := range s.opts.Checks {
		if err := c.HealthCheck(ctx); err != nil {
			s.log.Warn("readiness check failed", "check", name, "error", err)
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	writeJSON(w, status, map[string]any{
		"status":   state,
		"chapters": len(s.catalog.GetAllChapters()),
		"checks":   checks,
	})
}
