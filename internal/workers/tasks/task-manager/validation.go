// internal/workers/tasks/task-manager/validation.go
package taskmanager

import (
	"fmt"
	"strings"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/pkg/registry"
)

// Registry ids of the task endpoints.
const (
	EndpointList   = "task-list"
	EndpointCreate = "task-create"
	EndpointUpdate = "task-update"
)

// Validator checks request payloads against the registry input schemas.
type Validator struct {
	endpoints map[string]*registry.Endpoint
}

func NewValidator(reg *registry.EndpointRegistry) (*Validator, error) {
	v := &Validator{endpoints: make(map[string]*registry.Endpoint)}
	for _, id := range []string{EndpointList, EndpointCreate, EndpointUpdate} {
		e, ok := reg.Find(id)
		if !ok {
			return nil, fmt.Errorf("registry has no %s endpoint", id)
		}
		v.endpoints[id] = e
	}
	return v, nil
}

// Validate returns a TASK_VALIDATION_FAILED error carrying message when doc
// does not match the endpoint schema.
func (v *Validator) Validate(endpointID, message string, doc map[string]interface{}) error {
	e, ok := v.endpoints[endpointID]
	if !ok {
		return fmt.Errorf("unknown endpoint %s", endpointID)
	}
	errs, err := e.ValidateInput(doc)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return apperrors.NewTaskValidationFailedError(message, strings.Join(errs, "; "))
	}
	return nil
}

// parseUpdateInput maps a validated PATCH body to UpdateInput. JSON null
// and "" both clear priority and due date.
func parseUpdateInput(doc map[string]interface{}) *UpdateInput {
	in := &UpdateInput{}
	in.ID, _ = doc["id"].(string)
	in.Title = optionalString(doc, "title")
	in.Status = optionalString(doc, "status")
	in.Priority = optionalString(doc, "priority")
	in.DueDate = optionalString(doc, "dueDate")
	return in
}

func optionalString(doc map[string]interface{}, key string) *string {
	raw, present := doc[key]
	if !present {
		return nil
	}
	s, _ := raw.(string)
	return &s
}
