package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

// Project is an aggregate: every fetch carries its milestones, resource
// allocations, and linked tasks.
type Project struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	StartDate   string               `json:"start_date"`
	EndDate     string               `json:"end_date"`
	Status      string               `json:"status"`
	Priority    string               `json:"priority"`
	Manager     *string              `json:"manager"`
	Budget      *float64             `json:"budget"`
	Milestones  []Milestone          `json:"milestones"`
	Resources   []ResourceAllocation `json:"resources"`
	Tasks       []Task               `json:"tasks"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

// Milestone belongs to one project.
type Milestone struct {
	ID          int64   `json:"id"`
	ProjectID   int64   `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ResourceAllocation belongs to one project.
type ResourceAllocation struct {
	ID           int64    `json:"id"`
	ProjectID    int64    `json:"project_id"`
	ResourceName string   `json:"resource_name"`
	Role         string   `json:"role"`
	HoursPerWeek float64  `json:"hours_per_week"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	HourlyRate   *float64 `json:"hourly_rate"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// Patch allow-lists for the project family.
var (
	ProjectPatch = PatchSpec{
		Table:    "projects",
		IDColumn: "id",
		Allowed: []string{"name", "description", "start_date", "end_date",
			"status", "priority", "manager", "budget"},
	}
	MilestonePatch = PatchSpec{
		Table:    "milestones",
		IDColumn: "id",
		Allowed:  []string{"title", "description", "due_date", "completed"},
	}
	ResourcePatch = PatchSpec{
		Table:    "resource_allocations",
		IDColumn: "id",
		Allowed: []string{"resource_name", "role", "hours_per_week",
			"start_date", "end_date", "hourly_rate"},
	}
)

// projectCascade removes owned children and join rows but never the linked
// tasks themselves.
var projectCascade = CascadeSpec{
	Table:    "projects",
	IDColumn: "id",
	Children: []ChildSpec{
		{Table: "milestones", FKColumn: "project_id"},
		{Table: "resource_allocations", FKColumn: "project_id"},
		{Table: "project_tasks", FKColumn: "project_id"},
	},
}

// ProjectCreate carries the validated fields for CreateProject.
type ProjectCreate struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Status      string
	Priority    string
	Manager     *string
	Budget      *float64
}

// CreateProject inserts a project and returns it with empty child
// collections so the response shape matches Get.
func (d *DB) CreateProject(ctx context.Context, p ProjectCreate) (*Project, error) {
	if p.Status == "" {
		p.Status = "planning"
	}
	if p.Priority == "" {
		p.Priority = "medium"
	}
	res, err := d.Exec(ctx, `
		INSERT INTO projects (name, description, start_date, end_date, status, priority, manager, budget)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.StartDate, p.EndDate, p.Status, p.Priority, p.Manager, p.Budget)
	if err != nil {
		return nil, classify("create project", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, trackerrors.Internal("create project", err)
	}
	return d.GetProject(ctx, id)
}

const projectColumns = "id, name, description, start_date, end_date, status, priority, manager, budget, created_at, updated_at"

func scanProject(row interface{ Scan(...any) error }) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate,
		&p.Status, &p.Priority, &p.Manager, &p.Budget, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject retrieves a project with milestones, resources, and linked
// tasks attached.
func (d *DB) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := d.QueryRow(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("project", id)
		}
		return nil, trackerrors.Internal(fmt.Sprintf("get project %d", id), err)
	}
	if err := d.attachProjectChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *DB) attachProjectChildren(ctx context.Context, p *Project) error {
	milestones, err := d.listMilestones(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Milestones = milestones

	resources, err := d.listResources(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Resources = resources

	tasks, err := d.listLinkedTasks(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Tasks = tasks
	return nil
}

// ProjectListOpts filters ListProjects.
type ProjectListOpts struct {
	Status   string
	Priority string
}

// ListProjects returns projects with children attached, newest first.
func (d *DB) ListProjects(ctx context.Context, opts ProjectListOpts) ([]Project, error) {
	var where []string
	var args []any
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, opts.Priority)
	}

	query := "SELECT " + projectColumns + " FROM projects"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, trackerrors.Internal("list projects", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, trackerrors.Internal("scan project", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate projects", err)
	}

	for i := range projects {
		if err := d.attachProjectChildren(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// UpdateProject applies an allow-listed partial update.
func (d *DB) UpdateProject(ctx context.Context, id int64, fields map[string]any) (*Project, error) {
	if err := d.Patch(ctx, ProjectPatch, id, fields); err != nil {
		return nil, err
	}
	return d.GetProject(ctx, id)
}

// DeleteProject removes the project, its milestones, resource allocations,
// and task links atomically. Linked tasks survive.
func (d *DB) DeleteProject(ctx context.Context, id int64) error {
	return d.CascadeDelete(ctx, projectCascade, id)
}

// --- Milestones ---

func (d *DB) listMilestones(ctx context.Context, projectID int64) ([]Milestone, error) {
	rows, err := d.Query(ctx, `
		SELECT id, project_id, title, description, due_date, completed, created_at, updated_at
		FROM milestones WHERE project_id = ?
		ORDER BY due_date IS NULL, due_date ASC, id ASC`, projectID)
	if err != nil {
		return nil, trackerrors.Internal("list milestones", err)
	}
	defer func() { _ = rows.Close() }()

	milestones := []Milestone{}
	for rows.Next() {
		var m Milestone
		var completed int64
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &m.Description, &m.DueDate,
			&completed, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, trackerrors.Internal("scan milestone", err)
		}
		m.Completed = completed != 0
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate milestones", err)
	}
	return milestones, nil
}

func (d *DB) getMilestone(ctx context.Context, id int64) (*Milestone, error) {
	row := d.QueryRow(ctx, `
		SELECT id, project_id, title, description, due_date, completed, created_at, updated_at
		FROM milestones WHERE id = ?`, id)
	var m Milestone
	var completed int64
	err := row.Scan(&m.ID, &m.ProjectID, &m.Title, &m.Description, &m.DueDate,
		&completed, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("milestone", id)
		}
		return nil, trackerrors.Internal("get milestone", err)
	}
	m.Completed = completed != 0
	return &m, nil
}

// milestoneOwned verifies the milestone belongs to the claimed project.
func (d *DB) milestoneOwned(ctx context.Context, projectID, milestoneID int64) error {
	var one int
	err := d.QueryRow(ctx,
		"SELECT 1 FROM milestones WHERE id = ? AND project_id = ?", milestoneID, projectID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return trackerrors.NotFound("milestone", milestoneID)
		}
		return trackerrors.Internal("verify milestone", err)
	}
	return nil
}

// AddMilestone appends a milestone to a project.
func (d *DB) AddMilestone(ctx context.Context, projectID int64, title, description string, dueDate *string) (*Milestone, error) {
	if _, err := d.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	res, err := d.Exec(ctx,
		"INSERT INTO milestones (project_id, title, description, due_date) VALUES (?, ?, ?, ?)",
		projectID, title, description, dueDate)
	if err != nil {
		return nil, classify("create milestone", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, trackerrors.Internal("create milestone", err)
	}
	return d.getMilestone(ctx, id)
}

// UpdateMilestone patches a milestone after verifying parent ownership.
func (d *DB) UpdateMilestone(ctx context.Context, projectID, milestoneID int64, fields map[string]any) (*Milestone, error) {
	if err := d.milestoneOwned(ctx, projectID, milestoneID); err != nil {
		return nil, err
	}
	if err := d.Patch(ctx, MilestonePatch, milestoneID, fields); err != nil {
		return nil, err
	}
	return d.getMilestone(ctx, milestoneID)
}

// DeleteMilestone removes a milestone scoped to its project.
func (d *DB) DeleteMilestone(ctx context.Context, projectID, milestoneID int64) error {
	if err := d.milestoneOwned(ctx, projectID, milestoneID); err != nil {
		return err
	}
	_, err := d.Exec(ctx, "DELETE FROM milestones WHERE id = ?", milestoneID)
	if err != nil {
		return classify("delete milestone", err)
	}
	return nil
}

// --- Resource allocations ---

func (d *DB) listResources(ctx context.Context, projectID int64) ([]ResourceAllocation, error) {
	rows, err := d.Query(ctx, `
		SELECT id, project_id, resource_name, role, hours_per_week, start_date, end_date, hourly_rate, created_at, updated_at
		FROM resource_allocations WHERE project_id = ?
		ORDER BY id ASC`, projectID)
	if err != nil {
		return nil, trackerrors.Internal("list resources", err)
	}
	defer func() { _ = rows.Close() }()

	resources := []ResourceAllocation{}
	for rows.Next() {
		var r ResourceAllocation
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.ResourceName, &r.Role, &r.HoursPerWeek,
			&r.StartDate, &r.EndDate, &r.HourlyRate, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, trackerrors.Internal("scan resource", err)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate resources", err)
	}
	return resources, nil
}

func (d *DB) getResource(ctx context.Context, id int64) (*ResourceAllocation, error) {
	row := d.QueryRow(ctx, `
		SELECT id, project_id, resource_name, role, hours_per_week, start_date, end_date, hourly_rate, created_at, updated_at
		FROM resource_allocations WHERE id = ?`, id)
	var r ResourceAllocation
	err := row.Scan(&r.ID, &r.ProjectID, &r.ResourceName, &r.Role, &r.HoursPerWeek,
		&r.StartDate, &r.EndDate, &r.HourlyRate, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, trackerrors.NotFound("resource allocation", id)
		}
		return nil, trackerrors.Internal("get resource", err)
	}
	return &r, nil
}

func (d *DB) resourceOwned(ctx context.Context, projectID, resourceID int64) error {
	var one int
	err := d.QueryRow(ctx,
		"SELECT 1 FROM resource_allocations WHERE id = ? AND project_id = ?", resourceID, projectID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return trackerrors.NotFound("resource allocation", resourceID)
		}
		return trackerrors.Internal("verify resource", err)
	}
	return nil
}

// ResourceCreate carries the validated fields for AddResource.
type ResourceCreate struct {
	ResourceName string
	Role         string
	HoursPerWeek *float64
	StartDate    *string
	EndDate      *string
	HourlyRate   *float64
}

// AddResource allocates a resource to a project.
func (d *DB) AddResource(ctx context.Context, projectID int64, rc ResourceCreate) (*ResourceAllocation, error) {
	if _, err := d.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	hours := 40.0
	if rc.HoursPerWeek != nil {
		hours = *rc.HoursPerWeek
	}
	res, err := d.Exec(ctx, `
		INSERT INTO resource_allocations (project_id, resource_name, role, hours_per_week, start_date, end_date, hourly_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		projectID, rc.ResourceName, rc.Role, hours, rc.StartDate, rc.EndDate, rc.HourlyRate)
	if err != nil {
		return nil, classify("create resource", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, trackerrors.Internal("create resource", err)
	}
	return d.getResource(ctx, id)
}

// UpdateResource patches a resource allocation after verifying ownership.
func (d *DB) UpdateResource(ctx context.Context, projectID, resourceID int64, fields map[string]any) (*ResourceAllocation, error) {
	if err := d.resourceOwned(ctx, projectID, resourceID); err != nil {
		return nil, err
	}
	if err := d.Patch(ctx, ResourcePatch, resourceID, fields); err != nil {
		return nil, err
	}
	return d.getResource(ctx, resourceID)
}

// DeleteResource removes a resource allocation scoped to its project.
func (d *DB) DeleteResource(ctx context.Context, projectID, resourceID int64) error {
	if err := d.resourceOwned(ctx, projectID, resourceID); err != nil {
		return err
	}
	_, err := d.Exec(ctx, "DELETE FROM resource_allocations WHERE id = ?", resourceID)
	if err != nil {
		return classify("delete resource", err)
	}
	return nil
}

// --- Task links ---

func (d *DB) listLinkedTasks(ctx context.Context, projectID int64) ([]Task, error) {
	rows, err := d.Query(ctx, `
		SELECT t.id, t.name, t.creator, t.status, t.approver, t.timer, t.completed, t.created_at, t.updated_at
		FROM tasks t
		JOIN project_tasks pt ON pt.task_id = t.id
		WHERE pt.project_id = ?
		ORDER BY pt.created_at ASC, t.id ASC`, projectID)
	if err != nil {
		return nil, trackerrors.Internal("list linked tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, trackerrors.Internal("scan linked task", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate linked tasks", err)
	}
	return tasks, nil
}

// LinkTask attaches a task to a project. A duplicate pair is a conflict.
func (d *DB) LinkTask(ctx context.Context, projectID, taskID int64) error {
	if _, err := d.GetProject(ctx, projectID); err != nil {
		return err
	}
	if _, err := d.GetTask(ctx, taskID); err != nil {
		return err
	}
	_, err := d.Exec(ctx,
		"INSERT INTO project_tasks (project_id, task_id) VALUES (?, ?)", projectID, taskID)
	if err != nil {
		if IsUnique(err) {
			return trackerrors.Conflict("task is already linked to this project")
		}
		return classify("link task", err)
	}
	return nil
}

// UnlinkTask removes exactly one join row; the task itself survives.
func (d *DB) UnlinkTask(ctx context.Context, projectID, taskID int64) error {
	res, err := d.Exec(ctx,
		"DELETE FROM project_tasks WHERE project_id = ? AND task_id = ?", projectID, taskID)
	if err != nil {
		return classify("unlink task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return trackerrors.Internal("unlink task", err)
	}
	if n == 0 {
		return trackerrors.NotFound("project task link", taskID)
	}
	return nil
}

// ProjectStats summarizes projects by status and priority.
type ProjectStats struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	ByPriority  map[string]int `json:"by_priority"`
	TotalBudget float64        `json:"total_budget"`
}

// GetProjectStats returns aggregate counts over the projects table.
func (d *DB) GetProjectStats(ctx context.Context) (*ProjectStats, error) {
	s := &ProjectStats{
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
	}

	rows, err := d.Query(ctx, "SELECT status, priority, COALESCE(budget, 0) FROM projects")
	if err != nil {
		return nil, trackerrors.Internal("project stats", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status, priority string
		var budget float64
		if err := rows.Scan(&status, &priority, &budget); err != nil {
			return nil, trackerrors.Internal("scan project stats", err)
		}
		s.Total++
		s.ByStatus[status]++
		s.ByPriority[priority]++
		s.TotalBudget += budget
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.Internal("iterate project stats", err)
	}
	return s, nil
}
