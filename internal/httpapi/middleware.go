// internal/httpapi/middleware.go
package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/observability"
	"kpi-dashboard/internal/common/requestid"

	"go.opentelemetry.io/otel/attribute"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestid.Header))
		if id == "" {
			id = requestid.New()
		}
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.WithID(r.Context(), id)))
	})
}

// Trace opens a server span per request so upstream calls and log lines
// share its trace id.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := observability.StartSpan(r.Context(), r.Method+" "+r.URL.Path,
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
			attribute.String("request.id", requestid.FromContext(r.Context())),
		)
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", sw.status))
		var err error
		if sw.status >= http.StatusInternalServerError {
			err = fmt.Errorf("status %d", sw.status)
		}
		observability.EndSpan(span, err)
	})
}

func Recover(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithContext(r.Context()).Error("panic", map[string]interface{}{
						"requestId": requestid.FromContext(r.Context()),
						"path":      r.URL.Path,
						"method":    r.Method,
						"error":     fmt.Sprint(rec),
					})
					WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog logs every request and records it on the request meter. Paths not
// in routes are reported as "other" to bound metric cardinality.
func AccessLog(log logger.Logger, obs *observability.Observability, routes map[string]bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			dur := time.Since(start)

			route := r.URL.Path
			if !routes[route] {
				route = "other"
			}
			if obs != nil {
				obs.RecordRequest(r.Context(), route, sw.status, dur)
			}

			fields := map[string]interface{}{
				"requestId":  requestid.FromContext(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     sw.status,
				"bytes":      sw.bytes,
				"durationMs": dur.Milliseconds(),
			}
			if sw.status >= http.StatusInternalServerError {
				log.WithContext(r.Context()).Warn("http", fields)
				return
			}
			log.WithContext(r.Context()).Info("http", fields)
		})
	}
}
