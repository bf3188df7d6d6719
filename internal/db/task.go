package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// Task represents an approval-style task.
type Task struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Creator   string  `json:"creator"`
	Status    string  `json:"status"`
	Approver  *string `json:"approver"`
	Timer     *string `json:"timer"`
	Completed bool    `json:"completed"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// TaskPatch is the allow-list for generic task updates.
var TaskPatch = PatchSpec{
	Table:    "tasks",
	IDColumn: "id",
	Allowed:  []string{"name", "creator", "status", "approver", "timer", "completed"},
}

var taskCascade = CascadeSpec{
	Table:    "tasks",
	IDColumn: "id",
	Children: []ChildSpec{
		{Table: "project_tasks", FKColumn: "task_id"},
	},
}

const taskColumns = "id, name, creator, status, approver, timer, completed, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (*Task, error) {
	var t Task
	var completed int64
	err := row.Scan(&t.ID, &t.Name, &t.Creator, &t.Status, &t.Approver, &t.Timer,
		&completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Completed = completed != 0
	return &t, nil
}

// TaskCreate carries the insertable task fields. Status defaults to pending.
type TaskCreate struct {
	Name      string
	Creator   string
	Status    string
	Approver  *string
	Timer     *string
	Completed bool
}

// CreateTask inserts a task in one statement and returns the stored row.
func (d *DB) CreateTask(ctx context.Context, c TaskCreate) (*Task, error) {
	if c.Status == "" {
		c.Status = "pending"
	}
	res, err := d.Exec(ctx,
		"INSERT INTO tasks (name, creator, status, approver, timer, completed) VALUES (?, ?, ?, ?, ?, ?)",
		c.Name, c.Creator, c.Status, c.Approver, c.Timer, c.Completed)
	if err != nil {
		return nil, classify("create task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, trackerrors.Internal("create task", err)
	}
	return d.GetTask(ctx, id)
}

// GetTask retrieves a task by id.
func (d *DB) GetTask(ctx context.Context, id int64) (*Task, error) {
	row := d.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("task", id)
		}
		return nil, trackerrors.Internal(fmt.Sprintf("get task %d", id), err)
	}
	return t, nil
}

// TaskListOpts filters ListTasks.
type TaskListOpts struct {
	Status    string
	Creator   string
	Completed *bool
}

// ListTasks returns tasks matching the given options, newest first.
func (d *DB) ListTasks(ctx context.Context, opts TaskListOpts) ([]Task, error) {
	var where []string
	var args []any
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Creator != "" {
		where = append(where, "creator = ?")
		args = append(args, opts.Creator)
	}
	if opts.Completed != nil {
		if *opts.Completed {
			where = append(where, "completed = 1")
		} else {
			where = append(where, "completed = 0")
		}
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, trackerrors.Internal("list tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, trackerrors.Internal("scan task", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate tasks", err)
	}
	return tasks, nil
}

// UpdateTask applies an allow-listed partial update and returns the new row.
func (d *DB) UpdateTask(ctx context.Context, id int64, fields map[string]any) (*Task, error) {
	if err := d.Patch(ctx, TaskPatch, id, fields); err != nil {
		return nil, err
	}
	return d.GetTask(ctx, id)
}

// DeleteTask hard-deletes a task and its project links.
func (d *DB) DeleteTask(ctx context.Context, id int64) error {
	return d.CascadeDelete(ctx, taskCascade, id)
}

// TaskStats summarizes tasks by status.
type TaskStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Completed int `json:"completed"`
}

// GetTaskStats returns aggregate counts over the tasks table.
func (d *DB) GetTaskStats(ctx context.Context) (*TaskStats, error) {
	var s TaskStats
	err := d.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0)
		FROM tasks
	`).Scan(&s.Total, &s.Pending, &s.Approved, &s.Rejected, &s.Completed)
	if err != nil {
		return nil, trackerrors.Internal("task stats", err)
	}
	return &s, nil
}
