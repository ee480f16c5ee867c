// internal/workers/tasks/task-manager/service.go
package taskmanager

import (
	"context"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/metrics"
	"kpi-dashboard/internal/common/notion"
	"kpi-dashboard/internal/kpi"

	"github.com/jomei/notionapi"
)

// Workspace is the subset of the workspace client the service needs.
type Workspace interface {
	QueryDatabase(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
}

type ServiceDependencies struct {
	Workspace Workspace
	Logger    logger.Logger
	Clock     func() time.Time
}

type Service struct {
	config    *Config
	workspace Workspace
	logger    logger.Logger
	clock     func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		config:    config,
		workspace: deps.Workspace,
		logger:    deps.Logger,
		clock:     clock,
	}
}

// List returns open tasks, or with FilterThisWeek every task due in the
// current Monday to Sunday week. Both are sorted by due date.
func (s *Service) List(ctx context.Context, filter string) (*ListOutput, error) {
	query := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: PropertyStatus,
			Status:   &notionapi.StatusFilterCondition{DoesNotEqual: StatusDone},
		},
		Sorts:    []notionapi.SortObject{{Property: PropertyDueDate, Direction: notionapi.SortOrderASC}},
		PageSize: s.config.DefaultPageSize,
	}

	if filter == FilterThisWeek {
		monday := weekStart(s.clock().In(s.config.Location))
		from, until := notionapi.Date(monday), notionapi.Date(monday.AddDate(0, 0, 7))
		query.Filter = notionapi.AndCompoundFilter{
			notionapi.PropertyFilter{Property: PropertyDueDate, Date: &notionapi.DateFilterCondition{OnOrAfter: &from}},
			notionapi.PropertyFilter{Property: PropertyDueDate, Date: &notionapi.DateFilterCondition{Before: &until}},
		}
		query.PageSize = s.config.WeekPageSize
	}

	resp, err := s.workspace.QueryDatabase(ctx, s.config.DatabaseID, query)
	if err != nil {
		metrics.TaskOperations.WithLabelValues("list", "error").Inc()
		return nil, err
	}
	metrics.TaskOperations.WithLabelValues("list", "success").Inc()

	out := &ListOutput{Tasks: make([]Task, 0, len(resp.Results))}
	for _, page := range resp.Results {
		out.Tasks = append(out.Tasks, toTask(page))
	}

	s.logger.WithContext(ctx).Debug("tasks listed", map[string]interface{}{
		"filter": filter,
		"count":  len(out.Tasks),
	})
	return out, nil
}

// Create adds a task with status 未着手.
func (s *Service) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	page, err := s.workspace.CreatePage(ctx, s.config.DatabaseID, notionapi.Properties{
		PropertyTitle:  notion.TitleValue(input.Title),
		PropertyStatus: notion.StatusValue(StatusNotStarted),
	})
	if err != nil {
		metrics.TaskOperations.WithLabelValues("create", "error").Inc()
		return nil, err
	}
	metrics.TaskOperations.WithLabelValues("create", "success").Inc()

	out := &CreateOutput{Success: true, ID: page.ID.String()}
	if page.URL != "" {
		out.URL = &page.URL
	}

	s.logger.WithContext(ctx).Info("task created", map[string]interface{}{"taskId": page.ID})
	return out, nil
}

// Update writes only the properties present in input.
func (s *Service) Update(ctx context.Context, input *UpdateInput) (*UpdateOutput, error) {
	props := notionapi.Properties{}
	if input.Title != nil {
		props[PropertyTitle] = notion.TitleValue(*input.Title)
	}
	if input.Status != nil {
		props[PropertyStatus] = notion.StatusValue(*input.Status)
	}
	if input.Priority != nil {
		props[PropertyPriority] = notion.SelectValue(*input.Priority)
	}
	if input.DueDate != nil {
		props[PropertyDueDate] = notion.DateValue(*input.DueDate)
	}

	if _, err := s.workspace.UpdatePage(ctx, input.ID, props); err != nil {
		metrics.TaskOperations.WithLabelValues("update", "error").Inc()
		if stdErr := apperrors.Normalize(err); stdErr.Code == apperrors.ErrCodeTaskNotFound {
			return nil, apperrors.NewTaskNotFoundError(input.ID)
		}
		return nil, err
	}
	metrics.TaskOperations.WithLabelValues("update", "success").Inc()

	s.logger.WithContext(ctx).Info("task updated", map[string]interface{}{
		"taskId":     input.ID,
		"properties": len(props),
	})
	return &UpdateOutput{Success: true, ID: input.ID}, nil
}

// WeekRange returns Monday to Sunday of the week containing now, in now's
// location.
func WeekRange(now time.Time) kpi.DateRange {
	monday := weekStart(now)
	sunday := monday.AddDate(0, 0, 6)
	return kpi.DateRange{
		Start: monday.Format("2006-01-02"),
		End:   sunday.Format("2006-01-02"),
	}
}

// weekStart returns midnight of the Monday of now's week.
func weekStart(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	return time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
}

func toTask(page notionapi.Page) Task {
	props := page.Properties
	t := Task{
		ID:       page.ID.String(),
		Title:    notion.PlainTitle(props[PropertyTitle]),
		Status:   notion.OptionName(props[PropertyStatus]),
		Priority: notion.OptionName(props[PropertyPriority]),
		Business: notion.OptionName(props[PropertyBusiness]),
		URL:      page.URL,
	}
	if t.Title == "" {
		t.Title = untitled
	}
	if d := notion.DateStart(props[PropertyDueDate]); d != "" {
		t.DueDate = &d
	}
	return t
}
