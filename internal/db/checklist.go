package db

import (
	"context"
	"database/sql"
	"fmt"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// Checklist is an aggregate: every fetch carries its tasks and their
// subtasks. Checklist-family ids are opaque string tokens (see ids.go).
type Checklist struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Theme       string          `json:"theme"`
	Tasks       []ChecklistTask `json:"tasks"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// ChecklistTask belongs to one checklist and owns its subtasks.
type ChecklistTask struct {
	ID          string    `json:"id"`
	ChecklistID string    `json:"checklist_id"`
	Title       string    `json:"title"`
	Priority    string    `json:"priority"`
	Completed   bool      `json:"completed"`
	Subtasks    []Subtask `json:"subtasks"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

// Subtask is the leaf of the checklist tree.
type Subtask struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Patch allow-lists for the checklist family.
var (
	ChecklistPatch = PatchSpec{
		Table:    "checklists",
		IDColumn: "id",
		Allowed:  []string{"title", "description", "theme"},
	}
	ChecklistTaskPatch = PatchSpec{
		Table:    "checklist_tasks",
		IDColumn: "id",
		Allowed:  []string{"title", "priority", "completed"},
	}
	SubtaskPatch = PatchSpec{
		Table:    "subtasks",
		IDColumn: "id",
		Allowed:  []string{"title", "completed"},
	}
)

// checklistCascade drives subtask deletion through a sub-select on
// checklist_tasks, inside one transaction.
var checklistCascade = CascadeSpec{
	Table:    "checklists",
	IDColumn: "id",
	Children: []ChildSpec{
		{
			Table:    "checklist_tasks",
			FKColumn: "checklist_id",
			Children: []ChildSpec{
				{Table: "subtasks", FKColumn: "task_id"},
			},
		},
	},
}

var checklistTaskCascade = CascadeSpec{
	Table:    "checklist_tasks",
	IDColumn: "id",
	Children: []ChildSpec{
		{Table: "subtasks", FKColumn: "task_id"},
	},
}

// CreateChecklist inserts a checklist and returns it with an empty task
// collection so the response shape matches Get.
func (d *DB) CreateChecklist(ctx context.Context, title, description, theme string) (*Checklist, error) {
	id := NewToken()
	if theme == "" {
		theme = "blue"
	}
	_, err := d.Exec(ctx,
		"INSERT INTO checklists (id, title, description, theme) VALUES (?, ?, ?, ?)",
		id, title, description, theme)
	if err != nil {
		return nil, classify("create checklist", err)
	}
	return d.GetChecklist(ctx, id)
}

// GetChecklist retrieves a checklist with its tasks and subtasks attached.
func (d *DB) GetChecklist(ctx context.Context, id string) (*Checklist, error) {
	row := d.QueryRow(ctx,
		"SELECT id, title, description, theme, created_at, updated_at FROM checklists WHERE id = ?", id)
	var c Checklist
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Theme, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("checklist", id)
		}
		return nil, trackerrors.Internal(fmt.Sprintf("get checklist %s", id), err)
	}
	tasks, err := d.listChecklistTasks(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Tasks = tasks
	return &c, nil
}

// ListChecklists returns all checklists with children attached, newest first.
func (d *DB) ListChecklists(ctx context.Context) ([]Checklist, error) {
	rows, err := d.Query(ctx,
		"SELECT id, title, description, theme, created_at, updated_at FROM checklists ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, trackerrors.Internal("list checklists", err)
	}
	defer func() { _ = rows.Close() }()

	checklists := []Checklist{}
	for rows.Next() {
		var c Checklist
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Theme, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, trackerrors.Internal("scan checklist", err)
		}
		checklists = append(checklists, c)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate checklists", err)
	}

	// One query per parent per child table. Fine at this scale.
	for i := range checklists {
		tasks, err := d.listChecklistTasks(ctx, checklists[i].ID)
		if err != nil {
			return nil, err
		}
		checklists[i].Tasks = tasks
	}
	return checklists, nil
}

func (d *DB) listChecklistTasks(ctx context.Context, checklistID string) ([]ChecklistTask, error) {
	rows, err := d.Query(ctx, `
		SELECT id, checklist_id, title, priority, completed, created_at, updated_at
		FROM checklist_tasks WHERE checklist_id = ?
		ORDER BY created_at ASC, id ASC`, checklistID)
	if err != nil {
		return nil, trackerrors.Internal("list checklist tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []ChecklistTask{}
	for rows.Next() {
		var t ChecklistTask
		var completed int64
		if err := rows.Scan(&t.ID, &t.ChecklistID, &t.Title, &t.Priority, &completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, trackerrors.Internal("scan checklist task", err)
		}
		t.Completed = completed != 0
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate checklist tasks", err)
	}

	for i := range tasks {
		subtasks, err := d.listSubtasks(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Subtasks = subtasks
	}
	return tasks, nil
}

func (d *DB) listSubtasks(ctx context.Context, taskID string) ([]Subtask, error) {
	rows, err := d.Query(ctx, `
		SELECT id, task_id, title, completed, created_at, updated_at
		FROM subtasks WHERE task_id = ?
		ORDER BY created_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, trackerrors.Internal("list subtasks", err)
	}
	defer func() { _ = rows.Close() }()

	subtasks := []Subtask{}
	for rows.Next() {
		var s Subtask
		var completed int64
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Title, &completed, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, trackerrors.Internal("scan subtask", err)
		}
		s.Completed = completed != 0
		subtasks = append(subtasks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate subtasks", err)
	}
	return subtasks, nil
}

// UpdateChecklist applies an allow-listed partial update.
func (d *DB) UpdateChecklist(ctx context.Context, id string, fields map[string]any) (*Checklist, error) {
	if err := d.Patch(ctx, ChecklistPatch, id, fields); err != nil {
		return nil, err
	}
	return d.GetChecklist(ctx, id)
}

// DeleteChecklist removes the checklist, its tasks, and their subtasks
// atomically.
func (d *DB) DeleteChecklist(ctx context.Context, id string) error {
	return d.CascadeDelete(ctx, checklistCascade, id)
}

// checklistTaskOwned verifies the task belongs to the claimed checklist.
func (d *DB) checklistTaskOwned(ctx context.Context, checklistID, taskID string) error {
	var one int
	err := d.QueryRow(ctx,
		"SELECT 1 FROM checklist_tasks WHERE id = ? AND checklist_id = ?", taskID, checklistID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return trackerrors.NotFound("checklist task", taskID)
		}
		return trackerrors.Internal("verify checklist task", err)
	}
	return nil
}

// AddChecklistTask appends a task to a checklist.
func (d *DB) AddChecklistTask(ctx context.Context, checklistID, title, priority string) (*ChecklistTask, error) {
	if _, err := d.GetChecklist(ctx, checklistID); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = "Medium"
	}
	id := NewToken()
	_, err := d.Exec(ctx,
		"INSERT INTO checklist_tasks (id, checklist_id, title, priority) VALUES (?, ?, ?, ?)",
		id, checklistID, title, priority)
	if err != nil {
		return nil, classify("create checklist task", err)
	}
	return d.getChecklistTask(ctx, id)
}

func (d *DB) getChecklistTask(ctx context.Context, id string) (*ChecklistTask, error) {
	row := d.QueryRow(ctx, `
		SELECT id, checklist_id, title, priority, completed, created_at, updated_at
		FROM checklist_tasks WHERE id = ?`, id)
	var t ChecklistTask
	var completed int64
	err := row.Scan(&t.ID, &t.ChecklistID, &t.Title, &t.Priority, &completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("checklist task", id)
		}
		return nil, trackerrors.Internal("get checklist task", err)
	}
	t.Completed = completed != 0
	subtasks, err := d.listSubtasks(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Subtasks = subtasks
	return &t, nil
}

// UpdateChecklistTask patches a task after verifying parent ownership.
func (d *DB) UpdateChecklistTask(ctx context.Context, checklistID, taskID string, fields map[string]any) (*ChecklistTask, error) {
	if err := d.checklistTaskOwned(ctx, checklistID, taskID); err != nil {
		return nil, err
	}
	if err := d.Patch(ctx, ChecklistTaskPatch, taskID, fields); err != nil {
		return nil, err
	}
	return d.getChecklistTask(ctx, taskID)
}

// DeleteChecklistTask removes a task and its subtasks atomically.
func (d *DB) DeleteChecklistTask(ctx context.Context, checklistID, taskID string) error {
	if err := d.checklistTaskOwned(ctx, checklistID, taskID); err != nil {
		return err
	}
	return d.CascadeDelete(ctx, checklistTaskCascade, taskID)
}

// AddSubtask appends a subtask to a checklist task.
func (d *DB) AddSubtask(ctx context.Context, checklistID, taskID, title string) (*Subtask, error) {
	if err := d.checklistTaskOwned(ctx, checklistID, taskID); err != nil {
		return nil, err
	}
	id := NewToken()
	_, err := d.Exec(ctx,
		"INSERT INTO subtasks (id, task_id, title) VALUES (?, ?, ?)", id, taskID, title)
	if err != nil {
		return nil, classify("create subtask", err)
	}
	return d.getSubtask(ctx, id)
}

func (d *DB) getSubtask(ctx context.Context, id string) (*Subtask, error) {
	row := d.QueryRow(ctx, `
		SELECT id, task_id, title, completed, created_at, updated_at
		FROM subtasks WHERE id = ?`, id)
	var s Subtask
	var completed int64
	err := row.Scan(&s.ID, &s.TaskID, &s.Title, &completed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("subtask", id)
		}
		return nil, trackerrors.Internal("get subtask", err)
	}
	s.Completed = completed != 0
	return &s, nil
}

// subtaskOwned verifies the subtask belongs to the claimed task and the
// task to the claimed checklist.
func (d *DB) subtaskOwned(ctx context.Context, checklistID, taskID, subtaskID string) error {
	if err := d.checklistTaskOwned(ctx, checklistID, taskID); err != nil {
		return err
	}
	var one int
	err := d.QueryRow(ctx,
		"SELECT 1 FROM subtasks WHERE id = ? AND task_id = ?", subtaskID, taskID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return trackerrors.NotFound("subtask", subtaskID)
		}
		return trackerrors.Internal("verify subtask", err)
	}
	return nil
}

// UpdateSubtask patches a subtask after verifying the ownership chain.
func (d *DB) UpdateSubtask(ctx context.Context, checklistID, taskID, subtaskID string, fields map[string]any) (*Subtask, error) {
	if err := d.subtaskOwned(ctx, checklistID, taskID, subtaskID); err != nil {
		return nil, err
	}
	if err := d.Patch(ctx, SubtaskPatch, subtaskID, fields); err != nil {
		return nil, err
	}
	return d.getSubtask(ctx, subtaskID)
}

// DeleteSubtask removes a single subtask.
func (d *DB) DeleteSubtask(ctx context.Context, checklistID, taskID, subtaskID string) error {
	if err := d.subtaskOwned(ctx, checklistID, taskID, subtaskID); err != nil {
		return err
	}
	res, err := d.Exec(ctx, "DELETE FROM subtasks WHERE id = ?", subtaskID)
	if err != nil {
		return classify("delete subtask", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return trackerrors.Internal("delete subtask", err)
	}
	if n == 0 {
		return trackerrors.NotFound("subtask", subtaskID)
	}
	return nil
}

// ChecklistStats summarizes the checklist tree.
type ChecklistStats struct {
	Checklists     int `json:"checklists"`
	Tasks          int `json:"tasks"`
	CompletedTasks int `json:"completed_tasks"`
	Subtasks       int `json:"subtasks"`
}

// GetChecklistStats returns aggregate counts over the checklist family.
func (d *DB) GetChecklistStats(ctx context.Context) (*ChecklistStats, error) {
	var s ChecklistStats
	err := d.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM checklists),
		       (SELECT COUNT(*) FROM checklist_tasks),
		       (SELECT COUNT(*) FROM checklist_tasks WHERE completed = 1),
		       (SELECT COUNT(*) FROM subtasks)
	`).Scan(&s.Checklists, &s.Tasks, &s.CompletedTasks, &s.Subtasks)
	if err != nil {
		return nil, trackerrors.Internal("checklist stats", err)
	}
	return &s, nil
}
