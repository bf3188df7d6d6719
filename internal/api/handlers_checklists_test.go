package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestChecklistTree(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodPost, "/api/checklists",
		`{"title":"Release checklist","theme":"blue"}`)
	require.Equal(t, http.StatusCreated, status, body)
	listID := gjson.Get(body, "data.id").String()
	require.NotEmpty(t, listID)

	status, body = doJSON(t, ts, http.MethodPost, "/api/checklists/"+listID+"/tasks",
		`{"title":"Tag the release","priority":"High"}`)
	require.Equal(t, http.StatusCreated, status, body)
	taskID := gjson.Get(body, "data.id").String()

	status, body = doJSON(t, ts, http.MethodPost,
		"/api/checklists/"+listID+"/tasks/"+taskID+"/subtasks",
		`{"title":"Bump version"}`)
	require.Equal(t, http.StatusCreated, status, body)
	subtaskID := gjson.Get(body, "data.id").String()

	// The checklist comes back as a full tree.
	status, body = doJSON(t, ts, http.MethodGet, "/api/checklists/"+listID, "")
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, taskID, gjson.Get(body, "data.tasks.0.id").String())
	require.Equal(t, subtaskID, gjson.Get(body, "data.tasks.0.subtasks.0.id").String())

	// Completing the subtask through the nested route.
	status, body = doJSON(t, ts, http.MethodPut,
		"/api/checklists/"+listID+"/tasks/"+taskID+"/subtasks/"+subtaskID,
		`{"completed":true}`)
	require.Equal(t, http.StatusOK, status, body)
	require.True(t, gjson.Get(body, "data.completed").Bool())
}

func TestChecklistDeleteCascades(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodPost, "/api/checklists",
		`{"title":"Doomed checklist","theme":"red"}`)
	listID := gjson.Get(body, "data.id").String()

	_, body = doJSON(t, ts, http.MethodPost, "/api/checklists/"+listID+"/tasks",
		`{"title":"Child task"}`)
	taskID := gjson.Get(body, "data.id").String()
	doJSON(t, ts, http.MethodPost,
		"/api/checklists/"+listID+"/tasks/"+taskID+"/subtasks", `{"title":"Grandchild"}`)

	status, _ := doJSON(t, ts, http.MethodDelete, "/api/checklists/"+listID, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, ts, http.MethodGet, "/api/checklists/"+listID, "")
	require.Equal(t, http.StatusNotFound, status)

	// Nested children are gone too, so re-adding under the old ids 404s.
	status, _ = doJSON(t, ts, http.MethodPost,
		"/api/checklists/"+listID+"/tasks/"+taskID+"/subtasks", `{"title":"Orphan"}`)
	require.Equal(t, http.StatusNotFound, status)
}

func TestChecklistTaskWrongParent(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodPost, "/api/checklists", `{"title":"List A"}`)
	listA := gjson.Get(body, "data.id").String()
	_, body = doJSON(t, ts, http.MethodPost, "/api/checklists", `{"title":"List B"}`)
	listB := gjson.Get(body, "data.id").String()

	_, body = doJSON(t, ts, http.MethodPost, "/api/checklists/"+listA+"/tasks",
		`{"title":"Belongs to A"}`)
	taskID := gjson.Get(body, "data.id").String()

	// Updating A's task through B's path must not succeed.
	status, _ := doJSON(t, ts, http.MethodPut,
		"/api/checklists/"+listB+"/tasks/"+taskID, `{"completed":true}`)
	require.Equal(t, http.StatusNotFound, status)
}

func TestChecklistInvalidTheme(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	status, body := doJSON(t, ts, http.MethodPost, "/api/checklists",
		`{"title":"Bad theme","theme":"mauve"}`)
	require.Equal(t, http.StatusBadRequest, status, body)
	require.Equal(t, "theme", gjson.Get(body, "errors.0.field").String())
}

func TestChecklistStatsSummary(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodPost, "/api/checklists", `{"title":"Stats list"}`)
	listID := gjson.Get(body, "data.id").String()
	doJSON(t, ts, http.MethodPost, "/api/checklists/"+listID+"/tasks", `{"title":"One"}`)
	doJSON(t, ts, http.MethodPost, "/api/checklists/"+listID+"/tasks", `{"title":"Two"}`)

	status, body := doJSON(t, ts, http.MethodGet, "/api/checklists/stats/summary", "")
	require.Equal(t, http.StatusOK, status, body)
	require.EqualValues(t, 1, gjson.Get(body, "data.checklists").Int())
	require.EqualValues(t, 2, gjson.Get(body, "data.tasks").Int())
}
