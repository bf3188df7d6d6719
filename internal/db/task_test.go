package db

import (
	"context"
	"testing"

	trackerrors "github.com/trackline/trackline/internal/errors"
)

func TestTaskLifecycle(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	task, err := d.CreateTask(ctx, TaskCreate{Name: "review pull request", Creator: "alice"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != "pending" {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}
	if task.Approver != nil {
		t.Errorf("approver = %v, want nil", *task.Approver)
	}

	got, err := d.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Name != "review pull request" || got.Creator != "alice" {
		t.Errorf("got %q by %q", got.Name, got.Creator)
	}

	updated, err := d.UpdateTask(ctx, task.ID, map[string]any{
		"status":   "approved",
		"approver": "bob",
	})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Status != "approved" {
		t.Errorf("status = %q, want approved", updated.Status)
	}
	if updated.Approver == nil || *updated.Approver != "bob" {
		t.Errorf("approver = %v, want bob", updated.Approver)
	}

	if err := d.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	_, err = d.GetTask(ctx, task.ID)
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestTaskCreateViolatesCheck(t *testing.T) {
	d := newTestDB(t)

	_, err := d.CreateTask(context.Background(), TaskCreate{Name: "ab", Creator: "alice"})
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConstraint {
		t.Fatalf("expected constraint error for short name, got %v", err)
	}
}

func TestListTasksFilters(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	t1, _ := d.CreateTask(ctx, TaskCreate{Name: "deploy staging", Creator: "alice"})
	t2, _ := d.CreateTask(ctx, TaskCreate{Name: "deploy production", Creator: "bob"})
	if _, err := d.UpdateTask(ctx, t1.ID, map[string]any{"status": "approved"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := d.UpdateTask(ctx, t2.ID, map[string]any{"completed": 1}); err != nil {
		t.Fatalf("update: %v", err)
	}

	all, err := d.ListTasks(ctx, TaskListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}

	approved, err := d.ListTasks(ctx, TaskListOpts{Status: "approved"})
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != t1.ID {
		t.Errorf("approved filter returned %d rows", len(approved))
	}

	done := true
	completed, err := d.ListTasks(ctx, TaskListOpts{Completed: &done})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != t2.ID {
		t.Errorf("completed filter returned %d rows", len(completed))
	}

	byCreator, err := d.ListTasks(ctx, TaskListOpts{Creator: "alice"})
	if err != nil {
		t.Fatalf("list by creator: %v", err)
	}
	if len(byCreator) != 1 || byCreator[0].Creator != "alice" {
		t.Errorf("creator filter returned %d rows", len(byCreator))
	}

	none, err := d.ListTasks(ctx, TaskListOpts{Creator: "nobody"})
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if none == nil {
		t.Error("empty list should be non-nil")
	}
}

func TestTaskStats(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	t1, _ := d.CreateTask(ctx, TaskCreate{Name: "first task", Creator: "alice"})
	_, _ = d.CreateTask(ctx, TaskCreate{Name: "second task", Creator: "bob"})
	if _, err := d.UpdateTask(ctx, t1.ID, map[string]any{"status": "approved", "completed": 1}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats, err := d.GetTaskStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.Pending != 1 || stats.Approved != 1 || stats.Completed != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestArticleUniqueLink(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	a, err := d.CreateArticle(ctx, "Go 1.24 released", "https://go.dev/blog/go1.24")
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	_, err = d.CreateArticle(ctx, "Go 1.24 is out", "https://go.dev/blog/go1.24")
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate link, got %v", err)
	}

	b, err := d.CreateArticle(ctx, "Generics in practice", "https://go.dev/blog/generics")
	if err != nil {
		t.Fatalf("create second article: %v", err)
	}

	// Updating one link onto the other collides too.
	_, err = d.UpdateArticle(ctx, b.ID, map[string]any{"link": a.Link})
	te = trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConflict {
		t.Fatalf("expected conflict on update collision, got %v", err)
	}
}

func TestListArticlesQueryFilter(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, _ = d.CreateArticle(ctx, "Profiling Go services", "https://example.com/profiling")
	_, _ = d.CreateArticle(ctx, "SQLite in production", "https://example.com/sqlite")

	found, err := d.ListArticles(ctx, ArticleListOpts{Query: "sqlite"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(found) != 1 || found[0].Headline != "SQLite in production" {
		t.Errorf("query filter returned %d rows", len(found))
	}

	// Wildcards in the query must not act as wildcards.
	none, err := d.ListArticles(ctx, ArticleListOpts{Query: "%zzz%"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("wildcard query matched %d rows", len(none))
	}
}

func TestDeleteArticleNotFound(t *testing.T) {
	d := newTestDB(t)

	err := d.DeleteArticle(context.Background(), 777)
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateTaskWithOptionalFields(t *testing.T) {
	d := newTestDB(t)

	approver := "bob"
	timer := "00:45:00"
	task, err := d.CreateTask(context.Background(), TaskCreate{
		Name:      "prep demo environment",
		Creator:   "alice",
		Status:    "approved",
		Approver:  &approver,
		Timer:     &timer,
		Completed: true,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != "approved" {
		t.Errorf("status = %q, want approved", task.Status)
	}
	if task.Approver == nil || *task.Approver != "bob" {
		t.Errorf("approver = %v, want bob", task.Approver)
	}
	if task.Timer == nil || *task.Timer != "00:45:00" {
		t.Errorf("timer = %v, want 00:45:00", task.Timer)
	}
	if !task.Completed {
		t.Error("completed = false, want true")
	}
}

func TestCreateTaskFailureLeavesNoRow(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	_, err := d.CreateTask(ctx, TaskCreate{
		Name: "doomed task", Creator: "alice", Status: "bogus",
	})
	te := trackerrors.AsTrackError(err)
	if te == nil || te.Code != trackerrors.CodeConstraint {
		t.Fatalf("expected constraint error for bad status, got %v", err)
	}

	// The single-statement insert means a rejected create stores nothing.
	tasks, err := d.ListTasks(ctx, TaskListOpts{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("tasks = %d, want 0 after failed create", len(tasks))
	}
}
