package api

import (
	"net/http"

	"github.com/trackline/trackline/internal/validate"
)

func (s *Server) handleListChecklists(w http.ResponseWriter, r *http.Request) {
	checklists, err := s.db.ListChecklists(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, checklists)
}

func (s *Server) handleCreateChecklist(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ChecklistCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	checklist, err := s.db.CreateChecklist(r.Context(),
		validate.Str(clean, "title"), validate.Str(clean, "description"), validate.Str(clean, "theme"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, checklist)
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	checklist, err := s.db.GetChecklist(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, checklist)
}

func (s *Server) handleUpdateChecklist(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ChecklistUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	checklist, err := s.db.UpdateChecklist(r.Context(), r.PathValue("id"), clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, checklist)
}

func (s *Server) handleDeleteChecklist(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteChecklist(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "checklist deleted")
}

// --- Nested checklist tasks ---

func (s *Server) handleAddChecklistTask(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ChecklistTaskCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.db.AddChecklistTask(r.Context(), r.PathValue("id"),
		validate.Str(clean, "title"), validate.Str(clean, "priority"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateChecklistTask(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ChecklistTaskUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	task, err := s.db.UpdateChecklistTask(r.Context(),
		r.PathValue("id"), r.PathValue("taskId"), clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, task)
}

func (s *Server) handleDeleteChecklistTask(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteChecklistTask(r.Context(), r.PathValue("id"), r.PathValue("taskId"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "checklist task deleted")
}

// --- Nested subtasks ---

func (s *Server) handleAddSubtask(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.SubtaskCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	subtask, err := s.db.AddSubtask(r.Context(),
		r.PathValue("id"), r.PathValue("taskId"), validate.Str(clean, "title"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, subtask)
}

func (s *Server) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.SubtaskUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	subtask, err := s.db.UpdateSubtask(r.Context(),
		r.PathValue("id"), r.PathValue("taskId"), r.PathValue("subtaskId"), clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, subtask)
}

func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteSubtask(r.Context(),
		r.PathValue("id"), r.PathValue("taskId"), r.PathValue("subtaskId"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "subtask deleted")
}

func (s *Server) handleChecklistStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetChecklistStats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, stats)
}
