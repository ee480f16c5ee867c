// internal/httpapi/helpers.go
package httpapi

import (
	"encoding/json"
	"net/http"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/requestid"
)

func methodMux(m map[string]http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h.ServeHTTP(w, r)
			return
		}
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the same body shape as the error handler of the workers.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, apperrors.Response{
		Error:     message,
		Code:      apperrors.ErrorCode(code),
		RequestID: requestid.FromContext(r.Context()),
	})
}
