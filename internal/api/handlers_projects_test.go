package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"
)

func createProject(t *testing.T, ts *httptest.Server, body string) int64 {
	t.Helper()
	status, resp := doJSON(t, ts, http.MethodPost, "/api/projects", body)
	if status != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d: %s", status, resp)
	}
	return gjson.Get(resp, "data.id").Int()
}

func TestProjectCRUDWithDefaults(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	id := createProject(t, ts, `{"name":"Website refresh","start_date":"2026-08-01","end_date":"2026-12-31"}`)

	status, body := doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/projects/%d", id), "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if got := gjson.Get(body, "data.status").String(); got != "planning" {
		t.Errorf("expected planning default, got %q", got)
	}
	if got := gjson.Get(body, "data.priority").String(); got != "medium" {
		t.Errorf("expected medium default, got %q", got)
	}
	// Child collections serialize as arrays even when empty.
	for _, key := range []string{"data.milestones", "data.resources", "data.tasks"} {
		if !gjson.Get(body, key).IsArray() {
			t.Errorf("expected %s to be an array: %s", key, body)
		}
	}

	status, body = doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/projects/%d", id),
		`{"status":"active","budget":25000}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if got := gjson.Get(body, "data.budget").Float(); got != 25000 {
		t.Errorf("expected budget 25000, got %v", got)
	}
}

func TestProjectInvertedDatesRejected(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodPost, "/api/projects",
		`{"name":"Time traveler","start_date":"2026-09-01","end_date":"2026-08-01"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for end before start, got %d: %s", status, body)
	}
}

func TestProjectMilestonesAndResources(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	id := createProject(t, ts, `{"name":"Data migration","start_date":"2026-08-01","end_date":"2026-10-01"}`)
	base := fmt.Sprintf("/api/projects/%d", id)

	status, body := doJSON(t, ts, http.MethodPost, base+"/milestones",
		`{"title":"Schema frozen","due_date":"2026-09-15"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	milestoneID := gjson.Get(body, "data.id").Int()

	status, body = doJSON(t, ts, http.MethodPut,
		fmt.Sprintf("%s/milestones/%d", base, milestoneID), `{"completed":true}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !gjson.Get(body, "data.completed").Bool() {
		t.Errorf("expected milestone completed: %s", body)
	}

	status, body = doJSON(t, ts, http.MethodPost, base+"/resources",
		`{"resource_name":"Dana","role":"DBA"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	if got := gjson.Get(body, "data.hours_per_week").Float(); got != 40 {
		t.Errorf("expected default 40 hours per week, got %v", got)
	}

	// Milestones are scoped to their project.
	other := createProject(t, ts, `{"name":"Other project","start_date":"2026-08-01","end_date":"2026-10-01"}`)
	status, _ = doJSON(t, ts, http.MethodPut,
		fmt.Sprintf("/api/projects/%d/milestones/%d", other, milestoneID), `{"completed":false}`)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign milestone, got %d", status)
	}
}

func TestProjectTaskLinks(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	projectID := createProject(t, ts, `{"name":"Linked work","start_date":"2026-08-01","end_date":"2026-09-01"}`)
	_, body := doJSON(t, ts, http.MethodPost, "/api/tasks",
		`{"name":"shared task","creator":"Alice"}`)
	taskID := gjson.Get(body, "data.id").Int()

	link := fmt.Sprintf("/api/projects/%d/tasks/%d", projectID, taskID)
	status, body := doJSON(t, ts, http.MethodPost, link, "")
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}

	// Linking twice conflicts.
	status, _ = doJSON(t, ts, http.MethodPost, link, "")
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate link, got %d", status)
	}

	// The project view includes the linked task.
	_, body = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/projects/%d", projectID), "")
	if got := gjson.Get(body, "data.tasks.0.id").Int(); got != taskID {
		t.Errorf("expected linked task %d in project, got %s", taskID, body)
	}

	// Unlink leaves the task itself alive.
	status, _ = doJSON(t, ts, http.MethodDelete, link, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 on unlink, got %d", status)
	}
	status, _ = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/tasks/%d", taskID), "")
	if status != http.StatusOK {
		t.Fatalf("task should survive unlink, got %d", status)
	}

	// Deleting the project leaves the task alive too.
	doJSON(t, ts, http.MethodPost, link, "")
	doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/projects/%d", projectID), "")
	status, _ = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/tasks/%d", taskID), "")
	if status != http.StatusOK {
		t.Fatalf("task should survive project delete, got %d", status)
	}
}

func TestProjectStatsSummary(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	createProject(t, ts, `{"name":"Budgeted","start_date":"2026-08-01","end_date":"2026-09-01","budget":10000}`)
	createProject(t, ts, `{"name":"Unbudgeted","start_date":"2026-08-01","end_date":"2026-09-01","status":"active"}`)

	status, body := doJSON(t, ts, http.MethodGet, "/api/projects/stats/summary", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if got := gjson.Get(body, "data.total").Int(); got != 2 {
		t.Errorf("expected total 2, got %d", got)
	}
	if got := gjson.Get(body, "data.total_budget").Float(); got != 10000 {
		t.Errorf("expected total budget 10000, got %v", got)
	}
	if got := gjson.Get(body, "data.by_status.active").Int(); got != 1 {
		t.Errorf("expected 1 active project, got %d", got)
	}
}
