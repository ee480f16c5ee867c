// internal/workers/tasks/task-manager/handler.go
package taskmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/requestid"
	"kpi-dashboard/pkg/registry"
)

const (
	TaskType = "task-manager"
	Route    = "/api/notion/tasks"

	maxBodyBytes = 64 << 10
)

const (
	listFailure   = "Failed to fetch tasks"
	createFailure = "Failed to create task"
	updateFailure = "Failed to update task"
)

type Handler struct {
	config    *Config
	service   *Service
	validator *Validator
	logger    logger.Logger
	errors    *apperrors.ErrorHandler
}

type HandlerOptions struct {
	Config    *Config
	Workspace Workspace
	Registry  *registry.EndpointRegistry
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for task-manager: %w", err)
	}
	validator, err := NewValidator(opts.Registry)
	if err != nil {
		return nil, err
	}

	l := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    opts.Config,
		service:   NewService(ServiceDependencies{Workspace: opts.Workspace, Logger: l}, opts.Config),
		validator: validator,
		logger:    l,
		errors:    apperrors.NewErrorHandler(l),
	}, nil
}

// Service exposes the underlying service, mainly so tests can pin its clock.
func (h *Handler) Service() *Service {
	return h.service
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()
	reqID := requestid.FromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		filter := r.URL.Query().Get("filter")
		if err := h.validator.Validate(EndpointList, "Invalid filter", map[string]interface{}{"filter": filter}); err != nil {
			h.errors.Handle(w, reqID, listFailure, err)
			return
		}
		out, err := h.service.List(ctx, filter)
		if err != nil {
			h.errors.Handle(w, reqID, listFailure, err)
			return
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		doc, err := decodeBody(w, r)
		if err != nil {
			h.errors.Handle(w, reqID, createFailure, err)
			return
		}
		if err := h.validator.Validate(EndpointCreate, "Title is required", doc); err != nil {
			h.errors.Handle(w, reqID, createFailure, err)
			return
		}
		title, _ := doc["title"].(string)
		out, err := h.service.Create(ctx, &CreateInput{Title: title})
		if err != nil {
			h.errors.Handle(w, reqID, createFailure, err)
			return
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPatch:
		doc, err := decodeBody(w, r)
		if err != nil {
			h.errors.Handle(w, reqID, updateFailure, err)
			return
		}
		if err := h.validator.Validate(EndpointUpdate, updateValidationMessage(doc), doc); err != nil {
			h.errors.Handle(w, reqID, updateFailure, err)
			return
		}
		out, err := h.service.Update(ctx, parseUpdateInput(doc))
		if err != nil {
			h.errors.Handle(w, reqID, updateFailure, err)
			return
		}
		writeJSON(w, http.StatusOK, out)

	default:
		w.Header().Set("Allow", "GET, POST, PATCH")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func updateValidationMessage(doc map[string]interface{}) string {
	if id, _ := doc["id"].(string); id == "" {
		return "Task ID is required"
	}
	return "Invalid task update"
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	var doc map[string]interface{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.NewInvalidRequestError("invalid JSON body: " + err.Error())
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
