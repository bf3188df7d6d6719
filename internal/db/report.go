package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// ProgressReport is a daily standup-style report. One per reporter per day.
type ProgressReport struct {
	ID                int64   `json:"id"`
	ReporterName      string  `json:"reporter_name"`
	ReportDate        string  `json:"report_date"`
	TasksCompleted    string  `json:"tasks_completed"`
	TasksInProgress   string  `json:"tasks_in_progress"`
	TasksBlocked      string  `json:"tasks_blocked"`
	HoursWorked       float64 `json:"hours_worked"`
	Challenges        string  `json:"challenges"`
	NextDayPlan       string  `json:"next_day_plan"`
	MoodRating        *int64  `json:"mood_rating"`
	ProductivityScore *int64  `json:"productivity_score"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// ReportPatch is the allow-list for generic report updates.
var ReportPatch = PatchSpec{
	Table:    "progress_reports",
	IDColumn: "id",
	Allowed: []string{"reporter_name", "report_date", "tasks_completed",
		"tasks_in_progress", "tasks_blocked", "hours_worked", "challenges",
		"next_day_plan", "mood_rating", "productivity_score"},
}

const reportColumns = "id, reporter_name, report_date, tasks_completed, tasks_in_progress, tasks_blocked, hours_worked, challenges, next_day_plan, mood_rating, productivity_score, created_at, updated_at"

const reportConflictMsg = "a report for this reporter and date already exists"

func scanReport(row interface{ Scan(...any) error }) (*ProgressReport, error) {
	var r ProgressReport
	err := row.Scan(&r.ID, &r.ReporterName, &r.ReportDate, &r.TasksCompleted,
		&r.TasksInProgress, &r.TasksBlocked, &r.HoursWorked, &r.Challenges,
		&r.NextDayPlan, &r.MoodRating, &r.ProductivityScore, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ReportCreate carries the validated fields for CreateReport.
type ReportCreate struct {
	ReporterName      string
	ReportDate        string
	TasksCompleted    string
	TasksInProgress   string
	TasksBlocked      string
	HoursWorked       float64
	Challenges        string
	NextDayPlan       string
	MoodRating        *int64
	ProductivityScore *int64
}

// CreateReport inserts a progress report. A second report for the same
// reporter and date is a conflict.
func (d *DB) CreateReport(ctx context.Context, c ReportCreate) (*ProgressReport, error) {
	res, err := d.Exec(ctx, `
		INSERT INTO progress_reports (reporter_name, report_date, tasks_completed, tasks_in_progress, tasks_blocked, hours_worked, challenges, next_day_plan, mood_rating, productivity_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ReporterName, c.ReportDate, c.TasksCompleted, c.TasksInProgress,
		c.TasksBlocked, c.HoursWorked, c.Challenges, c.NextDayPlan,
		c.MoodRating, c.ProductivityScore)
	if err != nil {
		if IsUnique(err) {
			return nil, trackerrors.Conflict(reportConflictMsg)
		}
		return nil, classify("create report", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, trackerrors.Internal("create report", err)
	}
	return d.GetReport(ctx, id)
}

// GetReport retrieves a progress report by id.
func (d *DB) GetReport(ctx context.Context, id int64) (*ProgressReport, error) {
	row := d.QueryRow(ctx, "SELECT "+reportColumns+" FROM progress_reports WHERE id = ?", id)
	r, err := scanReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("report", id)
		}
		return nil, trackerrors.Internal(fmt.Sprintf("get report %d", id), err)
	}
	return r, nil
}

// ReportListOpts filters ListReports.
type ReportListOpts struct {
	Reporter string
	From     string
	To       string
}

// ListReports returns reports newest first.
func (d *DB) ListReports(ctx context.Context, opts ReportListOpts) ([]ProgressReport, error) {
	var where []string
	var args []any
	if opts.Reporter != "" {
		where = append(where, "reporter_name = ?")
		args = append(args, opts.Reporter)
	}
	if opts.From != "" {
		where = append(where, "report_date >= ?")
		args = append(args, opts.From)
	}
	if opts.To != "" {
		where = append(where, "report_date <= ?")
		args = append(args, opts.To)
	}

	query := "SELECT " + reportColumns + " FROM progress_reports"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY report_date DESC, id DESC"

	rows, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, trackerrors.Internal("list reports", err)
	}
	defer func() { _ = rows.Close() }()

	reports := []ProgressReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, trackerrors.Internal("scan report", err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate reports", err)
	}
	return reports, nil
}

// UpdateReport applies an allow-listed partial update and returns the new row.
func (d *DB) UpdateReport(ctx context.Context, id int64, fields map[string]any) (*ProgressReport, error) {
	if err := d.Patch(ctx, ReportPatch, id, fields); err != nil {
		if te := trackerrors.AsTrackError(err); te != nil && te.Code == trackerrors.CodeConflict {
			return nil, trackerrors.Conflict(reportConflictMsg)
		}
		return nil, err
	}
	return d.GetReport(ctx, id)
}

// DeleteReport hard-deletes a progress report.
func (d *DB) DeleteReport(ctx context.Context, id int64) error {
	res, err := d.Exec(ctx, "DELETE FROM progress_reports WHERE id = ?", id)
	if err != nil {
		return classify("delete report", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return trackerrors.Internal("delete report", err)
	}
	if n == 0 {
		return trackerrors.NotFound("report", id)
	}
	return nil
}

// ReportStats summarizes progress reports. Histogram keys are the rating
// values as strings so the JSON shape is a plain object.
type ReportStats struct {
	Total              int            `json:"total"`
	TotalHours         float64        `json:"total_hours"`
	AvgMood            float64        `json:"avg_mood"`
	AvgProductivity    float64        `json:"avg_productivity"`
	MoodCounts         map[string]int `json:"mood_counts"`
	ProductivityCounts map[string]int `json:"productivity_counts"`
}

// GetReportStats returns aggregates over reports matching opts. Unrated
// reports count toward totals but not the averages or histograms.
func (d *DB) GetReportStats(ctx context.Context, opts ReportListOpts) (*ReportStats, error) {
	reports, err := d.ListReports(ctx, opts)
	if err != nil {
		return nil, err
	}

	s := &ReportStats{
		MoodCounts:         map[string]int{},
		ProductivityCounts: map[string]int{},
	}
	var moodSum, moodN, prodSum, prodN int64
	for _, r := range reports {
		s.Total++
		s.TotalHours += r.HoursWorked
		if r.MoodRating != nil {
			moodSum += *r.MoodRating
			moodN++
			s.MoodCounts[fmt.Sprint(*r.MoodRating)]++
		}
		if r.ProductivityScore != nil {
			prodSum += *r.ProductivityScore
			prodN++
			s.ProductivityCounts[fmt.Sprint(*r.ProductivityScore)]++
		}
	}
	if moodN > 0 {
		s.AvgMood = float64(moodSum) / float64(moodN)
	}
	if prodN > 0 {
		s.AvgProductivity = float64(prodSum) / float64(prodN)
	}
	return s, nil
}
