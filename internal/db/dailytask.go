package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// DailyTask is an aggregate: every fetch carries its progress history.
// actual_hours is derived from that history and is not on the patch
// allow-list; AddProgress recomputes it.
type DailyTask struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	AssignedTo     string              `json:"assigned_to"`
	Priority       string              `json:"priority"`
	Status         string              `json:"status"`
	DueDate        string              `json:"due_date"`
	EstimatedHours *float64            `json:"estimated_hours"`
	ActualHours    float64             `json:"actual_hours"`
	Progress       []DailyTaskProgress `json:"progress"`
	CreatedAt      string              `json:"created_at"`
	UpdatedAt      string              `json:"updated_at"`
}

// DailyTaskProgress is one logged work entry against a daily task.
type DailyTaskProgress struct {
	ID                 int64   `json:"id"`
	DailyTaskID        int64   `json:"daily_task_id"`
	ProgressDate       string  `json:"progress_date"`
	HoursSpent         float64 `json:"hours_spent"`
	ProgressPercentage float64 `json:"progress_percentage"`
	Notes              string  `json:"notes"`
	CreatedAt          string  `json:"created_at"`
}

// DailyTaskPatch is the allow-list for generic daily task updates.
// actual_hours is deliberately absent.
var DailyTaskPatch = PatchSpec{
	Table:    "daily_tasks",
	IDColumn: "id",
	Allowed: []string{"title", "description", "assigned_to", "priority",
		"status", "due_date", "estimated_hours"},
}

var dailyTaskCascade = CascadeSpec{
	Table:    "daily_tasks",
	IDColumn: "id",
	Children: []ChildSpec{
		{Table: "daily_task_progress", FKColumn: "daily_task_id"},
	},
}

const dailyTaskColumns = "id, title, description, assigned_to, priority, status, due_date, estimated_hours, actual_hours, created_at, updated_at"

func scanDailyTask(row interface{ Scan(...any) error }) (*DailyTask, error) {
	var t DailyTask
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.Priority,
		&t.Status, &t.DueDate, &t.EstimatedHours, &t.ActualHours, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DailyTaskCreate carries the validated fields for CreateDailyTask.
type DailyTaskCreate struct {
	Title          string
	Description    string
	AssignedTo     string
	Priority       string
	Status         string
	DueDate        string
	EstimatedHours *float64
}

// CreateDailyTask inserts a daily task and returns it with an empty
// progress collection.
func (d *DB) CreateDailyTask(ctx context.Context, c DailyTaskCreate) (*DailyTask, error) {
	if c.Priority == "" {
		c.Priority = "medium"
	}
	if c.Status == "" {
		c.Status = "pending"
	}
	res, err := d.Exec(ctx, `
		INSERT INTO daily_tasks (title, description, assigned_to, priority, status, due_date, estimated_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Title, c.Description, c.AssignedTo, c.Priority, c.Status, c.DueDate, c.EstimatedHours)
	if err != nil {
		return nil, classify("create daily task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, trackerrors.Internal("create daily task", err)
	}
	return d.GetDailyTask(ctx, id)
}

// GetDailyTask retrieves a daily task with its progress history attached.
func (d *DB) GetDailyTask(ctx context.Context, id int64) (*DailyTask, error) {
	row := d.QueryRow(ctx, "SELECT "+dailyTaskColumns+" FROM daily_tasks WHERE id = ?", id)
	t, err := scanDailyTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("daily task", id)
		}
		return nil, trackerrors.Internal(fmt.Sprintf("get daily task %d", id), err)
	}
	progress, err := d.ListProgress(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Progress = progress
	return t, nil
}

// DailyTaskListOpts filters ListDailyTasks.
type DailyTaskListOpts struct {
	AssignedTo string
	Status     string
	DueFrom    string
	DueTo      string
}

// ListDailyTasks returns daily tasks ordered by due date ascending, then
// priority urgent-first, then newest created.
func (d *DB) ListDailyTasks(ctx context.Context, opts DailyTaskListOpts) ([]DailyTask, error) {
	var where []string
	var args []any
	if opts.AssignedTo != "" {
		where = append(where, "assigned_to = ?")
		args = append(args, opts.AssignedTo)
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.DueFrom != "" {
		where = append(where, "due_date >= ?")
		args = append(args, opts.DueFrom)
	}
	if opts.DueTo != "" {
		where = append(where, "due_date <= ?")
		args = append(args, opts.DueTo)
	}

	query := "SELECT " + dailyTaskColumns + " FROM daily_tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY due_date ASC,
		CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END ASC,
		created_at DESC, id DESC`

	rows, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, trackerrors.Internal("list daily tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []DailyTask{}
	for rows.Next() {
		t, err := scanDailyTask(rows)
		if err != nil {
			return nil, trackerrors.Internal("scan daily task", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate daily tasks", err)
	}

	for i := range tasks {
		progress, err := d.ListProgress(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Progress = progress
	}
	return tasks, nil
}

// UpdateDailyTask applies an allow-listed partial update.
func (d *DB) UpdateDailyTask(ctx context.Context, id int64, fields map[string]any) (*DailyTask, error) {
	if err := d.Patch(ctx, DailyTaskPatch, id, fields); err != nil {
		return nil, err
	}
	return d.GetDailyTask(ctx, id)
}

// DeleteDailyTask removes the task and its progress history atomically.
func (d *DB) DeleteDailyTask(ctx context.Context, id int64) error {
	return d.CascadeDelete(ctx, dailyTaskCascade, id)
}

// ListProgress returns the progress entries of a daily task, oldest first.
func (d *DB) ListProgress(ctx context.Context, taskID int64) ([]DailyTaskProgress, error) {
	rows, err := d.Query(ctx, `
		SELECT id, daily_task_id, progress_date, hours_spent, progress_percentage, notes, created_at
		FROM daily_task_progress WHERE daily_task_id = ?
		ORDER BY progress_date ASC, id ASC`, taskID)
	if err != nil {
		return nil, trackerrors.Internal("list progress", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []DailyTaskProgress{}
	for rows.Next() {
		var e DailyTaskProgress
		if err := rows.Scan(&e.ID, &e.DailyTaskID, &e.ProgressDate, &e.HoursSpent,
			&e.ProgressPercentage, &e.Notes, &e.CreatedAt); err != nil {
			return nil, trackerrors.Internal("scan progress", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate progress", err)
	}
	return entries, nil
}

// ProgressCreate carries the validated fields for AddProgress.
type ProgressCreate struct {
	ProgressDate       string
	HoursSpent         float64
	ProgressPercentage float64
	Notes              string
}

// AddProgress appends a progress entry and recomputes the parent's
// actual_hours as the sum of its entries, in one transaction. A 100%
// entry also marks the parent completed.
func (d *DB) AddProgress(ctx context.Context, taskID int64, c ProgressCreate) (*DailyTask, error) {
	if _, err := d.GetDailyTask(ctx, taskID); err != nil {
		return nil, err
	}
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO daily_task_progress (daily_task_id, progress_date, hours_spent, progress_percentage, notes)
			VALUES (?, ?, ?, ?, ?)`,
			taskID, c.ProgressDate, c.HoursSpent, c.ProgressPercentage, c.Notes); err != nil {
			return classify("create progress", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE daily_tasks
			SET actual_hours = (SELECT COALESCE(SUM(hours_spent), 0) FROM daily_task_progress WHERE daily_task_id = ?)
			WHERE id = ?`, taskID, taskID); err != nil {
			return classify("recompute actual hours", err)
		}
		if c.ProgressPercentage >= 100 {
			if _, err := tx.ExecContext(ctx,
				"UPDATE daily_tasks SET status = 'completed' WHERE id = ?", taskID); err != nil {
				return classify("complete daily task", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d.GetDailyTask(ctx, taskID)
}

// DailyTaskStats summarizes daily tasks by status and priority.
type DailyTaskStats struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	ByPriority     map[string]int `json:"by_priority"`
	EstimatedHours float64        `json:"estimated_hours"`
	ActualHours    float64        `json:"actual_hours"`
}

// GetDailyTaskStats returns aggregate counts over the daily_tasks table.
func (d *DB) GetDailyTaskStats(ctx context.Context) (*DailyTaskStats, error) {
	s := &DailyTaskStats{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}

	rows, err := d.Query(ctx,
		"SELECT status, priority, COALESCE(estimated_hours, 0), actual_hours FROM daily_tasks")
	if err != nil {
		return nil, trackerrors.Internal("daily task stats", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status, priority string
		var estimated, actual float64
		if err := rows.Scan(&status, &priority, &estimated, &actual); err != nil {
			return nil, trackerrors.Internal("scan daily task stats", err)
		}
		s.Total++
		s.ByStatus[status]++
		s.ByPriority[priority]++
		s.EstimatedHours += estimated
		s.ActualHours += actual
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate daily task stats", err)
	}
	return s, nil
}
