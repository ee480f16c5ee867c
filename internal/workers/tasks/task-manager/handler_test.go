// internal/workers/tasks/task-manager/handler_test.go
package taskmanager

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, ws *fakeWorkspace) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	h, err := NewHandler(HandlerOptions{
		Config:    createTestConfig(),
		Workspace: ws,
		Registry:  reg,
		Logger:    logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	h.Service().clock = func() time.Time { return testNow }
	return h
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.Response {
	t.Helper()
	var body apperrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewHandler_RequiresDatabase(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)

	_, err = NewHandler(HandlerOptions{
		Config:   DefaultConfig(),
		Registry: reg,
		Logger:   logger.NewNoOpLogger(),
	})
	assert.Error(t, err)
}

func TestHandler_Get(t *testing.T) {
	ws := &fakeWorkspace{}
	rec := serve(newTestHandler(t, ws), http.MethodGet, Route+"?filter=this-week", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
	assert.Equal(t, 50, ws.query.PageSize)
}

func TestHandler_Get_UnknownFilterListsOpenTasks(t *testing.T) {
	ws := &fakeWorkspace{}
	rec := serve(newTestHandler(t, ws), http.MethodGet, Route+"?filter=next-month", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, ws.query.PageSize)
}

func TestHandler_Get_WorkspaceDown(t *testing.T) {
	ws := &fakeWorkspace{err: apperrors.NewWorkspaceUnavailableError("notion.query_database", errors.New("503"))}
	rec := serve(newTestHandler(t, ws), http.MethodGet, Route, "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to fetch tasks", decodeError(t, rec).Error)
}

func TestHandler_Post(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"valid", `{"title":"Call owner"}`, http.StatusOK, ""},
		{"missing title", `{}`, http.StatusBadRequest, "Title is required"},
		{"empty title", `{"title":""}`, http.StatusBadRequest, "Title is required"},
		{"non-string title", `{"title":42}`, http.StatusBadRequest, "Title is required"},
		{"malformed json", `{"title":`, http.StatusBadRequest, "Invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &fakeWorkspace{}
			rec := serve(newTestHandler(t, ws), http.MethodPost, Route, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
				return
			}
			assert.JSONEq(t, `{"success":true,"id":"new-page","url":"https://notion.so/new-page"}`, rec.Body.String())
		})
	}
}

func TestHandler_Patch(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
		wantProps  map[string]any
	}{
		{
			name:       "clear priority with null and due date with empty string",
			body:       `{"id":"p1","priority":null,"dueDate":""}`,
			wantStatus: http.StatusOK,
			wantProps: map[string]any{
				PropertyPriority: map[string]any{"select": nil},
				PropertyDueDate:  map[string]any{"date": nil},
			},
		},
		{
			name:       "set title and due date",
			body:       `{"id":"p1","title":"Renamed","dueDate":"2024-02-20"}`,
			wantStatus: http.StatusOK,
			wantProps: map[string]any{
				PropertyTitle:   map[string]any{"title": []map[string]any{{"text": map[string]any{"content": "Renamed"}}}},
				PropertyDueDate: map[string]any{"date": map[string]any{"start": "2024-02-20"}},
			},
		},
		{name: "missing id", body: `{"title":"x"}`, wantStatus: http.StatusBadRequest, wantError: "Task ID is required"},
		{name: "bad due date", body: `{"id":"p1","dueDate":"soon"}`, wantStatus: http.StatusBadRequest, wantError: "Invalid task update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &fakeWorkspace{}
			rec := serve(newTestHandler(t, ws), http.MethodPatch, Route, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
				assert.Empty(t, ws.updatedID)
				return
			}
			assert.JSONEq(t, `{"success":true,"id":"p1"}`, rec.Body.String())
			assert.Equal(t, tt.wantProps, ws.updated)
		})
	}
}

func TestHandler_Patch_NotFound(t *testing.T) {
	ws := &fakeWorkspace{err: apperrors.NewTaskNotFoundError("")}
	rec := serve(newTestHandler(t, ws), http.MethodPatch, Route, `{"id":"gone"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.ErrCodeTaskNotFound, body.Code)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	rec := serve(newTestHandler(t, &fakeWorkspace{}), http.MethodDelete, Route, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST, PATCH", rec.Header().Get("Allow"))
}
