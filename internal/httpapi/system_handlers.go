// internal/httpapi/system_handlers.go
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/requestid"
)

type HealthStatus struct {
	Status string              `json:"status"`
	Cache  string              `json:"cache"`
	Code   apperrors.ErrorCode `json:"code,omitempty"`
	Time   string              `json:"time"`
}

type CacheInvalidation struct {
	Removed int `json:"removed"`
}

// healthz stays 200 when the cache is down since fetches bypass it.
func (d Deps) healthz(w http.ResponseWriter, r *http.Request) {
	hs := HealthStatus{
		Status: "ok",
		Cache:  "disabled",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if d.CacheCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.CacheCheck(ctx); err != nil {
			hs.Status = "degraded"
			hs.Cache = "unavailable"
			hs.Code = cacheError(err).Code
		} else {
			hs.Cache = "ok"
		}
	}
	WriteJSON(w, http.StatusOK, hs)
}

// invalidateCache drops the record snapshots so the next reads go to the
// record store.
func (d Deps) invalidateCache(w http.ResponseWriter, r *http.Request) {
	log := d.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithContext(r.Context())

	removed, err := d.CacheInvalidate(r.Context())
	if err != nil {
		apperrors.NewErrorHandler(log).Handle(w, requestid.FromContext(r.Context()), "", cacheError(err))
		return
	}
	log.Info("record cache invalidated", map[string]interface{}{"removed": removed})
	WriteJSON(w, http.StatusOK, CacheInvalidation{Removed: removed})
}

// cacheError keeps a StandardError as is and treats anything else as the
// cache being unreachable.
func cacheError(err error) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return apperrors.NewCacheUnavailableError(err)
}

func (d Deps) serveRegistry(w http.ResponseWriter, r *http.Request) {
	if d.Registry == nil {
		WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "registry not loaded")
		return
	}
	WriteJSON(w, http.StatusOK, d.Registry)
}
