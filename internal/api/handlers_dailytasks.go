package api

import (
	"net/http"

	"github.com/trackline/trackline/internal/db"
	"github.com/trackline/trackline/internal/validate"
)

// handleListDailyTasks returns daily tasks filtered by assignee, status, or
// due-date range.
func (s *Server) handleListDailyTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := s.db.ListDailyTasks(r.Context(), db.DailyTaskListOpts{
		AssignedTo: q.Get("assigned_to"),
		Status:     q.Get("status"),
		DueFrom:    q.Get("due_from"),
		DueTo:      q.Get("due_to"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateDailyTask(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.DailyTaskCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.db.CreateDailyTask(r.Context(), db.DailyTaskCreate{
		Title:          validate.Str(clean, "title"),
		Description:    validate.Str(clean, "description"),
		AssignedTo:     validate.Str(clean, "assigned_to"),
		Priority:       validate.Str(clean, "priority"),
		Status:         validate.Str(clean, "status"),
		DueDate:        validate.Str(clean, "due_date"),
		EstimatedHours: validate.F64Ptr(clean, "estimated_hours"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, task)
}

func (s *Server) handleGetDailyTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	task, err := s.db.GetDailyTask(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, task)
}

func (s *Server) handleUpdateDailyTask(w http.ResponseWriter, r *http.Request) {
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
	clean, err := validate.DailyTaskUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.db.UpdateDailyTask(r.Context(), id, clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, task)
}

func (s *Server) handleDeleteDailyTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.DeleteDailyTask(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "daily task deleted")
}

// handleAddProgress appends a progress entry and returns the task with its
// recomputed actual_hours.
func (s *Server) handleAddProgress(w http.ResponseWriter, r *http.Request) {
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
	clean, err := validate.ProgressEntry.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.db.AddProgress(r.Context(), id, db.ProgressCreate{
		ProgressDate:       validate.Str(clean, "progress_date"),
		HoursSpent:         validate.F64(clean, "hours_spent"),
		ProgressPercentage: validate.F64(clean, "progress_percentage"),
		Notes:              validate.Str(clean, "notes"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, task)
}

func (s *Server) handleDailyTaskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDailyTaskStats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, stats)
}
