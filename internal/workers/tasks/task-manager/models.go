// internal/workers/tasks/task-manager/models.go
package taskmanager

// Task property names in the workspace database.
const (
	PropertyTitle    = "項目"
	PropertyStatus   = "ステータス"
	PropertyPriority = "優先順位"
	PropertyDueDate  = "期日"
	PropertyBusiness = "事業"

	StatusDone       = "完了"
	StatusNotStarted = "未着手"

	FilterThisWeek = "this-week"
	untitled       = "No title"
)

type Task struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Priority string  `json:"priority"`
	DueDate  *string `json:"dueDate"`
	Business string  `json:"business"`
	URL      string  `json:"url"`
}

type ListOutput struct {
	Tasks []Task `json:"tasks"`
}

type CreateInput struct {
	Title string `json:"title"`
}

type CreateOutput struct {
	Success bool    `json:"success"`
	ID      string  `json:"id"`
	URL     *string `json:"url"`
}

// UpdateInput carries only the fields present in the request. A non-nil
// Priority or DueDate pointing at "" clears that property.
type UpdateInput struct {
	ID       string
	Title    *string
	Status   *string
	Priority *string
	DueDate  *string
}

type UpdateOutput struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
