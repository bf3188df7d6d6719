package db

import (
	"context"
	"fmt"
)

// Schema DDL. Everything uses IF NOT EXISTS so Migrate is idempotent
// against an already-initialized store.
const (
	createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL CHECK (length(name) >= 3),
    creator TEXT NOT NULL CHECK (length(creator) >= 2),
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    approver TEXT,
    timer TEXT,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createArticles = `CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    headline TEXT NOT NULL CHECK (length(headline) >= 5),
    link TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createChecklists = `CREATE TABLE IF NOT EXISTS checklists (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL CHECK (length(title) >= 3),
    description TEXT NOT NULL DEFAULT '',
    theme TEXT NOT NULL DEFAULT 'blue' CHECK (theme IN ('blue', 'green', 'purple', 'red', 'yellow', 'indigo')),
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createChecklistTasks = `CREATE TABLE IF NOT EXISTS checklist_tasks (
    id TEXT PRIMARY KEY,
    checklist_id TEXT NOT NULL REFERENCES checklists(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    priority TEXT NOT NULL DEFAULT 'Medium' CHECK (priority IN ('High', 'Medium', 'Low')),
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createSubtasks = `CREATE TABLE IF NOT EXISTS subtasks (
    id TEXT PRIMARY KEY,
    task_id TEXT NOT NULL REFERENCES checklist_tasks(id) ON DELETE CASCADE,
    title TEXT NOT NULL CHECK (length(title) >= 2),
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL CHECK (length(name) >= 3),
    description TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'planning' CHECK (status IN ('planning', 'active', 'on-hold', 'completed', 'cancelled')),
    priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
    manager TEXT,
    budget REAL,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),
    CHECK (end_date >= start_date)
);`

	createMilestones = `CREATE TABLE IF NOT EXISTS milestones (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    title TEXT NOT NULL CHECK (length(title) >= 3),
    description TEXT NOT NULL DEFAULT '',
    due_date TEXT,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createResourceAllocations = `CREATE TABLE IF NOT EXISTS resource_allocations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    resource_name TEXT NOT NULL CHECK (length(resource_name) >= 2),
    role TEXT NOT NULL DEFAULT '',
    hours_per_week REAL NOT NULL DEFAULT 40,
    start_date TEXT,
    end_date TEXT,
    hourly_rate REAL,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createProjectTasks = `CREATE TABLE IF NOT EXISTS project_tasks (
    project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (project_id, task_id)
);`

	createDailyTasks = `CREATE TABLE IF NOT EXISTS daily_tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL CHECK (length(title) >= 3),
    description TEXT NOT NULL DEFAULT '',
    assigned_to TEXT NOT NULL CHECK (length(assigned_to) >= 2),
    priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in-progress', 'completed', 'blocked')),
    due_date TEXT NOT NULL,
    estimated_hours REAL,
    actual_hours REAL NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createDailyTaskProgress = `CREATE TABLE IF NOT EXISTS daily_task_progress (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    daily_task_id INTEGER NOT NULL REFERENCES daily_tasks(id) ON DELETE CASCADE,
    progress_date TEXT NOT NULL,
    hours_spent REAL NOT NULL CHECK (hours_spent >= 0),
    progress_percentage REAL NOT NULL DEFAULT 0 CHECK (progress_percentage >= 0 AND progress_percentage <= 100),
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

	createProgressReports = `CREATE TABLE IF NOT EXISTS progress_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    reporter_name TEXT NOT NULL CHECK (length(reporter_name) >= 2),
    report_date TEXT NOT NULL,
    tasks_completed TEXT NOT NULL DEFAULT '',
    tasks_in_progress TEXT NOT NULL DEFAULT '',
    tasks_blocked TEXT NOT NULL DEFAULT '',
    hours_worked REAL NOT NULL DEFAULT 0,
    challenges TEXT NOT NULL DEFAULT '',
    next_day_plan TEXT NOT NULL DEFAULT '',
    mood_rating INTEGER CHECK (mood_rating BETWEEN 1 AND 5),
    productivity_score INTEGER CHECK (productivity_score BETWEEN 1 AND 5),
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),
    UNIQUE (reporter_name, report_date)
);`
)

// Index DDL for the common lookups.
const (
	idxTasksCreator        = `CREATE INDEX IF NOT EXISTS idx_tasks_creator ON tasks(creator);`
	idxTasksStatus         = `CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`
	idxArticlesCreated     = `CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at);`
	idxChecklistTasksList  = `CREATE INDEX IF NOT EXISTS idx_checklist_tasks_checklist ON checklist_tasks(checklist_id);`
	idxSubtasksTask        = `CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks(task_id);`
	idxProjectsStatus      = `CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);`
	idxProjectsPriority    = `CREATE INDEX IF NOT EXISTS idx_projects_priority ON projects(priority);`
	idxMilestonesProject   = `CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones(project_id);`
	idxResourcesProject    = `CREATE INDEX IF NOT EXISTS idx_resource_allocations_project ON resource_allocations(project_id);`
	idxDailyTasksAssignee  = `CREATE INDEX IF NOT EXISTS idx_daily_tasks_assigned_to ON daily_tasks(assigned_to);`
	idxDailyTasksStatus    = `CREATE INDEX IF NOT EXISTS idx_daily_tasks_status ON daily_tasks(status);`
	idxDailyTasksDueDate   = `CREATE INDEX IF NOT EXISTS idx_daily_tasks_due_date ON daily_tasks(due_date);`
	idxProgressTask        = `CREATE INDEX IF NOT EXISTS idx_daily_task_progress_task ON daily_task_progress(daily_task_id);`
	idxReportsReporterDate = `CREATE INDEX IF NOT EXISTS idx_progress_reports_reporter_date ON progress_reports(reporter_name, report_date);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createTasks,
	createArticles,
	createChecklists,
	createChecklistTasks,
	createSubtasks,
	createProjects,
	createMilestones,
	createResourceAllocations,
	createProjectTasks,
	createDailyTasks,
	createDailyTaskProgress,
	createProgressReports,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTasksCreator,
	idxTasksStatus,
	idxArticlesCreated,
	idxChecklistTasksList,
	idxSubtasksTask,
	idxProjectsStatus,
	idxProjectsPriority,
	idxMilestonesProject,
	idxResourcesProject,
	idxDailyTasksAssignee,
	idxDailyTasksStatus,
	idxDailyTasksDueDate,
	idxProgressTask,
	idxReportsReporterDate,
}

// updatedAtTables get an AFTER UPDATE trigger stamping updated_at.
var updatedAtTables = []string{
	"tasks",
	"articles",
	"checklists",
	"checklist_tasks",
	"subtasks",
	"projects",
	"milestones",
	"resource_allocations",
	"daily_tasks",
	"progress_reports",
}

// Migrate creates all tables, indexes, and triggers. Safe to re-run.
func (d *DB) Migrate(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := d.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := d.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	for _, table := range updatedAtTables {
		trigger := fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS trg_%s_updated_at
AFTER UPDATE ON %s
BEGIN
    UPDATE %s SET updated_at = datetime('now') WHERE id = NEW.id;
END;`, table, table, table)
		if _, err := d.Exec(ctx, trigger); err != nil {
			return fmt.Errorf("create trigger for %s: %w", table, err)
		}
	}
	return nil
}
