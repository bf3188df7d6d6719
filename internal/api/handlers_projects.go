package api

import (
	"net/http"

	"github.com/trackline/trackline/internal/db"
	"github.com/trackline/trackline/internal/validate"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.db.ListProjects(r.Context(), db.ProjectListOpts{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ProjectCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	project, err := s.db.CreateProject(r.Context(), db.ProjectCreate{
		Name:        validate.Str(clean, "name"),
		Description: validate.Str(clean, "description"),
		StartDate:   validate.Str(clean, "start_date"),
		EndDate:     validate.Str(clean, "end_date"),
		Status:      validate.Str(clean, "status"),
		Priority:    validate.Str(clean, "priority"),
		Manager:     validate.StrPtr(clean, "manager"),
		Budget:      validate.F64Ptr(clean, "budget"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	project, err := s.db.GetProject(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
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
	clean, err := validate.ProjectUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	project, err := s.db.UpdateProject(r.Context(), id, clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.DeleteProject(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "project deleted")
}

// --- Milestones ---

func (s *Server) handleAddMilestone(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.MilestoneCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	milestone, err := s.db.AddMilestone(r.Context(), projectID,
		validate.Str(clean, "title"), validate.Str(clean, "description"),
		validate.StrPtr(clean, "due_date"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, milestone)
}

func (s *Server) handleUpdateMilestone(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	milestoneID, err := pathID(r, "milestoneId")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.MilestoneUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	milestone, err := s.db.UpdateMilestone(r.Context(), projectID, milestoneID, clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, milestone)
}

func (s *Server) handleDeleteMilestone(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	milestoneID, err := pathID(r, "milestoneId")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.DeleteMilestone(r.Context(), projectID, milestoneID); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "milestone deleted")
}

// --- Resource allocations ---

func (s *Server) handleAddResource(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ResourceCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resource, err := s.db.AddResource(r.Context(), projectID, db.ResourceCreate{
		ResourceName: validate.Str(clean, "resource_name"),
		Role:         validate.Str(clean, "role"),
		HoursPerWeek: validate.F64Ptr(clean, "hours_per_week"),
		StartDate:    validate.StrPtr(clean, "start_date"),
		EndDate:      validate.StrPtr(clean, "end_date"),
		HourlyRate:   validate.F64Ptr(clean, "hourly_rate"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, resource)
}

func (s *Server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resourceID, err := pathID(r, "resourceId")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ResourceUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resource, err := s.db.UpdateResource(r.Context(), projectID, resourceID, clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, resource)
}

func (s *Server) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resourceID, err := pathID(r, "resourceId")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.DeleteResource(r.Context(), projectID, resourceID); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "resource allocation deleted")
}

// --- Task links ---

func (s *Server) handleLinkTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskId")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.LinkTask(r.Context(), projectID, taskID); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusCreated, "task linked to project")
}

func (s *Server) handleUnlinkTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskId")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.UnlinkTask(r.Context(), projectID, taskID); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "task unlinked from project")
}

func (s *Server) handleProjectStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetProjectStats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, stats)
}
