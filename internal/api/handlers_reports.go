package api

import (
	"net/http"

	"github.com/trackline/trackline/internal/db"
	"github.com/trackline/trackline/internal/validate"
)

func reportListOpts(r *http.Request) db.ReportListOpts {
	q := r.URL.Query()
	return db.ReportListOpts{
		Reporter: q.Get("reporter"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	}
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.db.ListReports(r.Context(), reportListOpts(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, reports)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	clean, err := validate.ReportCreate.Create(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	report, err := s.db.CreateReport(r.Context(), db.ReportCreate{
		ReporterName:      validate.Str(clean, "reporter_name"),
		ReportDate:        validate.Str(clean, "report_date"),
		TasksCompleted:    validate.Str(clean, "tasks_completed"),
		TasksInProgress:   validate.Str(clean, "tasks_in_progress"),
		TasksBlocked:      validate.Str(clean, "tasks_blocked"),
		HoursWorked:       validate.F64(clean, "hours_worked"),
		Challenges:        validate.Str(clean, "challenges"),
		NextDayPlan:       validate.Str(clean, "next_day_plan"),
		MoodRating:        validate.I64Ptr(clean, "mood_rating"),
		ProductivityScore: validate.I64Ptr(clean, "productivity_score"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusCreated, report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	report, err := s.db.GetReport(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, report)
}

func (s *Server) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
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
	clean, err := validate.ReportUpdate.Update(body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	report, err := s.db.UpdateReport(r.Context(), id, clean)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.db.DeleteReport(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "report deleted")
}

// handleReportStats returns averages and rating histograms, honoring the
// same reporter/date filters as list.
func (s *Server) handleReportStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetReportStats(r.Context(), reportListOpts(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondData(w, http.StatusOK, stats)
}
