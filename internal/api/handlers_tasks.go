package api

import (
	"net/http"
	"strconv"

	"github.com/trackline/trackline/internal/db"
	"github.com/trackline/trackline/internal/validate"
)

// handleListTasks returns tasks matching optional status/creator/completed
// filters.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	opts := db.TaskListOpts{
		Status:  r.URL.Query().Get("status"),
		Creator: r.URL.Query().Get("creator"),
	}
	if v := r.URL.Query().Get("completed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Completed = &b
		}
	}

	tasks, err := s.db.ListTasks(r.Context(), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.TaskCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.db.CreateTask(r.Context(), db.TaskCreate{
		Name:      validate.Str(clean, "name"),
		Creator:   validate.Str(clean, "creator"),
		Status:    validate.Str(clean, "status"),
		Approver:  validate.StrPtr(clean, "approver"),
		Timer:     validate.StrPtr(clean, "timer"),
		Completed: validate.BoolVal(clean, "completed"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	task, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.TaskUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.db.UpdateTask(r.Context(), id, clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.DeleteTask(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "task deleted")
}

func (s *Server) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetTaskStats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, stats)
}
