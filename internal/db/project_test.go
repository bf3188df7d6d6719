package db

import (
	"context"
	"testing"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

func newTestProject(t *testing.T, d *DB) *Project {
	t.Helper()
	p, err := d.CreateProject(context.Background(), ProjectCreate{
		Name:      "Platform migration",
		StartDate: "2026-01-01",
		EndDate:   "2026-06-30",
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestProjectDefaults(t *testing.T) {
	d := newTestDB(t)
	p := newTestProject(t, d)

	if p.Status != "planning" || p.Priority != "medium" {
		t.Errorf("defaults: status=%q priority=%q", p.Status, p.Priority)
	}
	if p.Milestones == nil || p.Resources == nil || p.Tasks == nil {
		t.Error("child collections must be non-nil")
	}
}

func TestProjectDateOrderEnforced(t *testing.T) {
	d := newTestDB(t)

	_, err := d.CreateProject(context.Background(), ProjectCreate{
		Name:      "Backwards project",
		StartDate: "2026-06-30",
		EndDate:   "2026-01-01",
	})
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConstraint {
		t.Fatalf("expected constraint error for inverted dates, got %v", err)
	}
}

func TestProjectChildren(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	p := newTestProject(t, d)

	due := "2026-03-01"
	m, err := d.AddMilestone(ctx, p.ID, "Schema frozen", "", &due)
	if err != nil {
		t.Fatalf("add milestone: %v", err)
	}

	r, err := d.AddResource(ctx, p.ID, ResourceCreate{ResourceName: "carol", Role: "backend"})
	if err != nil {
		t.Fatalf("add resource: %v", err)
	}
	if r.HoursPerWeek != 40 {
		t.Errorf("hours_per_week = %v, want default 40", r.HoursPerWeek)
	}

	got, err := d.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if len(got.Milestones) != 1 || got.Milestones[0].ID != m.ID {
		t.Errorf("milestones = %d", len(got.Milestones))
	}
	if len(got.Resources) != 1 || got.Resources[0].ResourceName != "carol" {
		t.Errorf("resources = %d", len(got.Resources))
	}

	// Milestones are scoped to their project.
	other := newTestProject(t, d)
	_, err = d.UpdateMilestone(ctx, other.ID, m.ID, map[string]any{"completed": 1})
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign project, got %v", err)
	}
}

func TestLinkTaskSemantics(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	p := newTestProject(t, d)

	task, err := d.CreateTask(ctx, TaskCreate{Name: "wire the gateway", Creator: "alice"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := d.LinkTask(ctx, p.ID, task.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	err = d.LinkTask(ctx, p.ID, task.ID)
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate link, got %v", err)
	}

	err = d.LinkTask(ctx, p.ID, 9999)
	te = trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeNotFound {
		t.Fatalf("expected not found for missing task, got %v", err)
	}

	got, err := d.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].ID != task.ID {
		t.Fatalf("linked tasks = %d", len(got.Tasks))
	}

	if err := d.UnlinkTask(ctx, p.ID, task.ID); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	// Unlinking never deletes the task itself.
	if _, err := d.GetTask(ctx, task.ID); err != nil {
		t.Fatalf("task should survive unlink: %v", err)
	}

	err = d.UnlinkTask(ctx, p.ID, task.ID)
	te = trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeNotFound {
		t.Fatalf("expected not found on second unlink, got %v", err)
	}
}

func TestProjectCascadeSparesLinkedTasks(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	p := newTestProject(t, d)

	due := "2026-02-01"
	_, _ = d.AddMilestone(ctx, p.ID, "Kickoff done", "", &due)
	_, _ = d.AddResource(ctx, p.ID, ResourceCreate{ResourceName: "dave"})
	task, _ := d.CreateTask(ctx, TaskCreate{Name: "shared task", Creator: "alice"})
	if err := d.LinkTask(ctx, p.ID, task.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := d.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	var milestones, resources, links int
	_ = d.QueryRow(ctx, "SELECT COUNT(*) FROM milestones").Scan(&milestones)
	_ = d.QueryRow(ctx, "SELECT COUNT(*) FROM resource_allocations").Scan(&resources)
	_ = d.QueryRow(ctx, "SELECT COUNT(*) FROM project_tasks").Scan(&links)
	if milestones != 0 || resources != 0 || links != 0 {
		t.Errorf("children remain: %d milestones, %d resources, %d links", milestones, resources, links)
	}

	if _, err := d.GetTask(ctx, task.ID); err != nil {
		t.Errorf("linked task deleted with project: %v", err)
	}
}

func TestProjectStats(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	budget := 1500.0
	_, err := d.CreateProject(ctx, ProjectCreate{
		Name: "Budgeted work", StartDate: "2026-01-01", EndDate: "2026-02-01",
		Status: "active", Priority: "high", Budget: &budget,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	newTestProject(t, d)

	stats, err := d.GetProjectStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.ByStatus["active"] != 1 || stats.ByPriority["high"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.TotalBudget != 1500 {
		t.Errorf("total budget = %v, want 1500", stats.TotalBudget)
	}
}
