// Package api provides the REST API server for trackline.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/trackline/trackline/internal/config"
	"github.com/trackline/trackline/internal/db"
)

// Server is the trackline API server.
type Server struct {
	addr   string
	mux    *http.ServeMux
	logger *slog.Logger
	cfg    *config.Config
	db     *db.DB

	limiter *clientLimiter
	started time.Time
}

// New creates a new API server over an opened, migrated database.
func New(store *db.DB, cfg *config.Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:    cfg.Server.Addr(),
		mux:     http.NewServeMux(),
		logger:  logger,
		cfg:     cfg,
		db:      store,
		limiter: newClientLimiter(cfg.RateLimit),
		started: time.Now(),
	}

	s.registerRoutes()
	return s
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// CORS middleware wrapper
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			h(w, r)
		}
	}

	// Health check
	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))

	// Tasks
	s.mux.HandleFunc("GET /api/tasks", cors(s.handleListTasks))
	s.mux.HandleFunc("POST /api/tasks", cors(s.handleCreateTask))
	s.mux.HandleFunc("GET /api/tasks/stats/summary", cors(s.handleTaskStats))
	s.mux.HandleFunc("GET /api/tasks/{id}", cors(s.handleGetTask))
	s.mux.HandleFunc("PUT /api/tasks/{id}", cors(s.handleUpdateTask))
	s.mux.HandleFunc("DELETE /api/tasks/{id}", cors(s.handleDeleteTask))

	// Articles
	s.mux.HandleFunc("GET /api/articles", cors(s.handleListArticles))
	s.mux.HandleFunc("POST /api/articles", cors(s.handleCreateArticle))
	s.mux.HandleFunc("GET /api/articles/stats/summary", cors(s.handleArticleStats))
	s.mux.HandleFunc("GET /api/articles/{id}", cors(s.handleGetArticle))
	s.mux.HandleFunc("PUT /api/articles/{id}", cors(s.handleUpdateArticle))
	s.mux.HandleFunc("DELETE /api/articles/{id}", cors(s.handleDeleteArticle))

	// Checklists with nested tasks and subtasks
	s.mux.HandleFunc("GET /api/checklists", cors(s.handleListChecklists))
	s.mux.HandleFunc("POST /api/checklists", cors(s.handleCreateChecklist))
	s.mux.HandleFunc("GET /api/checklists/stats/summary", cors(s.handleChecklistStats))
	s.mux.HandleFunc("GET /api/checklists/{id}", cors(s.handleGetChecklist))
	s.mux.HandleFunc("PUT /api/checklists/{id}", cors(s.handleUpdateChecklist))
	s.mux.HandleFunc("DELETE /api/checklists/{id}", cors(s.handleDeleteChecklist))
	s.mux.HandleFunc("POST /api/checklists/{id}/tasks", cors(s.handleAddChecklistTask))
	s.mux.HandleFunc("PUT /api/checklists/{id}/tasks/{taskId}", cors(s.handleUpdateChecklistTask))
	s.mux.HandleFunc("DELETE /api/checklists/{id}/tasks/{taskId}", cors(s.handleDeleteChecklistTask))
	s.mux.HandleFunc("POST /api/checklists/{id}/tasks/{taskId}/subtasks", cors(s.handleAddSubtask))
	s.mux.HandleFunc("PUT /api/checklists/{id}/tasks/{taskId}/subtasks/{subtaskId}", cors(s.handleUpdateSubtask))
	s.mux.HandleFunc("DELETE /api/checklists/{id}/tasks/{taskId}/subtasks/{subtaskId}", cors(s.handleDeleteSubtask))

	// Projects with milestones, resources, and task links
	s.mux.HandleFunc("GET /api/projects", cors(s.handleListProjects))
	s.mux.HandleFunc("POST /api/projects", cors(s.handleCreateProject))
	s.mux.HandleFunc("GET /api/projects/stats/summary", cors(s.handleProjectStats))
	s.mux.HandleFunc("GET /api/projects/{id}", cors(s.handleGetProject))
	s.mux.HandleFunc("PUT /api/projects/{id}", cors(s.handleUpdateProject))
	s.mux.HandleFunc("DELETE /api/projects/{id}", cors(s.handleDeleteProject))
	s.mux.HandleFunc("POST /api/projects/{id}/milestones", cors(s.handleAddMilestone))
	s.mux.HandleFunc("PUT /api/projects/{id}/milestones/{milestoneId}", cors(s.handleUpdateMilestone))
	s.mux.HandleFunc("DELETE /api/projects/{id}/milestones/{milestoneId}", cors(s.handleDeleteMilestone))
	s.mux.HandleFunc("POST /api/projects/{id}/resources", cors(s.handleAddResource))
	s.mux.HandleFunc("PUT /api/projects/{id}/resources/{resourceId}", cors(s.handleUpdateResource))
	s.mux.HandleFunc("DELETE /api/projects/{id}/resources/{resourceId}", cors(s.handleDeleteResource))
	s.mux.HandleFunc("POST /api/projects/{id}/tasks/{taskId}", cors(s.handleLinkTask))
	s.mux.HandleFunc("DELETE /api/projects/{id}/tasks/{taskId}", cors(s.handleUnlinkTask))

	// Daily tasks with progress history
	s.mux.HandleFunc("GET /api/daily-tasks", cors(s.handleListDailyTasks))
	s.mux.HandleFunc("POST /api/daily-tasks", cors(s.handleCreateDailyTask))
	s.mux.HandleFunc("GET /api/daily-tasks/stats/summary", cors(s.handleDailyTaskStats))
	s.mux.HandleFunc("GET /api/daily-tasks/{id}", cors(s.handleGetDailyTask))
	s.mux.HandleFunc("PUT /api/daily-tasks/{id}", cors(s.handleUpdateDailyTask))
	s.mux.HandleFunc("DELETE /api/daily-tasks/{id}", cors(s.handleDeleteDailyTask))
	s.mux.HandleFunc("POST /api/daily-tasks/{id}/progress", cors(s.handleAddProgress))

	// Progress reports
	s.mux.HandleFunc("GET /api/reports", cors(s.handleListReports))
	s.mux.HandleFunc("POST /api/reports", cors(s.handleCreateReport))
	s.mux.HandleFunc("GET /api/reports/stats/summary", cors(s.handleReportStats))
	s.mux.HandleFunc("GET /api/reports/{id}", cors(s.handleGetReport))
	s.mux.HandleFunc("PUT /api/reports/{id}", cors(s.handleUpdateReport))
	s.mux.HandleFunc("DELETE /api/reports/{id}", cors(s.handleDeleteReport))

	// Unmatched API routes 404 through the envelope
	s.mux.HandleFunc("/api/", cors(s.handleAPINotFound))
}

// Handler returns the full handler chain: logging, panic recovery, and rate
// limiting around the route mux.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.rateLimit(h)
	h = s.recoverPanics(h)
	h = s.logRequests(h)
	return h
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", s.addr, "environment", s.cfg.Environment)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleHealth returns server health status with uptime and environment tag.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"environment": s.cfg.Environment,
	})
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	s.respondMessage(w, http.StatusNotFound, "route not found")
}
