// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns service errors into JSON error responses.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Response is the body written for failed requests. Error carries the
// human-readable summary the dashboard shows.
type Response struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	RequestID string    `json:"requestId,omitempty"`
}

// Handle logs err and writes it with the status mapped from its code.
// summary replaces the message for upstream failures, e.g. "Failed to fetch Sales KPI".
func (h *ErrorHandler) Handle(w http.ResponseWriter, requestID string, summary string, err error) {
	stdErr := Normalize(err)

	h.logger.Error("request failed", map[string]interface{}{
		"requestId":     requestID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	status := HTTPStatus(stdErr.Code)
	msg := summary
	if msg == "" || status < http.StatusInternalServerError {
		msg = stdErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Error:     msg,
		Code:      stdErr.Code,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		RequestID: requestID,
	})
}
