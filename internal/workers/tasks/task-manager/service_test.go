// internal/workers/tasks/task-manager/service_test.go
package taskmanager

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/notion"
	"kpi-dashboard/internal/kpi"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.DatabaseID = "db-tasks"
	cfg.Location = time.UTC
	return cfg
}

type fakeWorkspace struct {
	query      *notionapi.DatabaseQueryRequest
	databaseID string
	created    notionapi.Properties
	updatedID  string
	updated    notionapi.Properties

	results []notionapi.Page
	err     error
}

func (f *fakeWorkspace) QueryDatabase(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	f.databaseID = databaseID
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	return &notionapi.DatabaseQueryResponse{Results: f.results}, nil
}

func (f *fakeWorkspace) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	f.databaseID = databaseID
	f.created = properties
	if f.err != nil {
		return nil, f.err
	}
	return &notionapi.Page{ID: "new-page", URL: "https://notion.so/new-page"}, nil
}

func (f *fakeWorkspace) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	f.updatedID = pageID
	f.updated = properties
	if f.err != nil {
		return nil, f.err
	}
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func filterJSON(t *testing.T, q *notionapi.DatabaseQueryRequest) string {
	t.Helper()
	b, err := json.Marshal(q.Filter)
	require.NoError(t, err)
	return string(b)
}

func newTestService(t *testing.T, ws *fakeWorkspace) *Service {
	return NewService(ServiceDependencies{
		Workspace: ws,
		Logger:    logger.NewTestLogger(t),
		Clock:     func() time.Time { return testNow },
	}, createTestConfig())
}

// ==========================
// WeekRange
// ==========================

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want kpi.DateRange
	}{
		{"thursday", time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC), kpi.DateRange{Start: "2024-02-12", End: "2024-02-18"}},
		{"monday", time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC), kpi.DateRange{Start: "2024-02-12", End: "2024-02-18"}},
		{"sunday belongs to the previous monday", time.Date(2024, 2, 18, 23, 59, 0, 0, time.UTC), kpi.DateRange{Start: "2024-02-12", End: "2024-02-18"}},
		{"across a month end", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), kpi.DateRange{Start: "2024-02-26", End: "2024-03-03"}},
		{"across a year end", time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), kpi.DateRange{Start: "2024-12-30", End: "2025-01-05"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekRange(tt.now))
		})
	}
}

// ==========================
// List
// ==========================

func TestService_List_Default(t *testing.T) {
	ws := &fakeWorkspace{}
	_, err := newTestService(t, ws).List(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "db-tasks", ws.databaseID)
	assert.Equal(t, 10, ws.query.PageSize)
	assert.JSONEq(t, `{"property":"ステータス","status":{"does_not_equal":"完了"}}`, filterJSON(t, ws.query))
	assert.Equal(t, []notionapi.SortObject{{Property: PropertyDueDate, Direction: notionapi.SortOrderASC}}, ws.query.Sorts)
}

func TestService_List_ThisWeek(t *testing.T) {
	ws := &fakeWorkspace{}
	_, err := newTestService(t, ws).List(context.Background(), FilterThisWeek)
	require.NoError(t, err)

	assert.Equal(t, 50, ws.query.PageSize)
	assert.JSONEq(t, `{"and":[
		{"property":"期日","date":{"on_or_after":"2024-02-12T00:00:00Z"}},
		{"property":"期日","date":{"before":"2024-02-19T00:00:00Z"}}
	]}`, filterJSON(t, ws.query))
}

func TestService_List_MapsPages(t *testing.T) {
	due16 := notionapi.Date(time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC))
	ws := &fakeWorkspace{results: []notionapi.Page{
		{
			ID:  "p1",
			URL: "https://notion.so/p1",
			Properties: notionapi.Properties{
				PropertyTitle:    &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "Quarterly review"}}},
				PropertyStatus:   &notionapi.StatusProperty{Status: notionapi.Status{Name: "進行中"}},
				PropertyPriority: &notionapi.SelectProperty{Select: notionapi.Option{Name: "高"}},
				PropertyDueDate:  &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &due16}},
				PropertyBusiness: &notionapi.SelectProperty{Select: notionapi.Option{Name: "不動産"}},
			},
		},
		{ID: "p2"},
	}}

	out, err := newTestService(t, ws).List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, out.Tasks, 2)

	due := "2024-02-16"
	assert.Equal(t, Task{
		ID:       "p1",
		Title:    "Quarterly review",
		Status:   "進行中",
		Priority: "高",
		DueDate:  &due,
		Business: "不動産",
		URL:      "https://notion.so/p1",
	}, out.Tasks[0])

	assert.Equal(t, Task{ID: "p2", Title: "No title"}, out.Tasks[1])
}

// ==========================
// Create / Update
// ==========================

func TestService_Create(t *testing.T) {
	ws := &fakeWorkspace{}
	out, err := newTestService(t, ws).Create(context.Background(), &CreateInput{Title: "Call owner"})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, "new-page", out.ID)
	require.NotNil(t, out.URL)
	assert.Equal(t, "db-tasks", ws.databaseID)
	assert.Equal(t, notion.TitleValue("Call owner"), ws.created[PropertyTitle])
	assert.Equal(t, notion.StatusValue(StatusNotStarted), ws.created[PropertyStatus])
}

func TestService_Update_OnlyPresentFields(t *testing.T) {
	ws := &fakeWorkspace{}
	status := "完了"
	empty := ""

	out, err := newTestService(t, ws).Update(context.Background(), &UpdateInput{
		ID:       "p1",
		Status:   &status,
		Priority: &empty,
		DueDate:  &empty,
	})
	require.NoError(t, err)

	assert.Equal(t, &UpdateOutput{Success: true, ID: "p1"}, out)
	assert.Equal(t, "p1", ws.updatedID)
	body, err := json.Marshal(ws.updated)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"ステータス": {"status": {"name": "完了"}},
		"優先順位": {"select": null},
		"期日": {"date": null}
	}`, string(body))
}

func TestService_Update_NotFoundCarriesID(t *testing.T) {
	ws := &fakeWorkspace{err: apperrors.NewTaskNotFoundError("")}

	_, err := newTestService(t, ws).Update(context.Background(), &UpdateInput{ID: "missing"})
	require.Error(t, err)

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeTaskNotFound, stdErr.Code)
	assert.Contains(t, stdErr.Details, "missing")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, createTestConfig().Validate())
	assert.Error(t, DefaultConfig().Validate())
}
