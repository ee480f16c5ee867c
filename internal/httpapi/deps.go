// internal/httpapi/deps.go
package httpapi

import (
	"context"
	"net/http"

	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/observability"
	"kpi-dashboard/pkg/registry"
)

type Deps struct {
	Summary    http.Handler
	Sales      http.Handler
	Realestate http.Handler
	HR         http.Handler
	Tasks      http.Handler

	Registry *registry.EndpointRegistry

	// CacheCheck reports cache reachability on /healthz. Nil means the cache
	// is disabled.
	CacheCheck func(ctx context.Context) error

	// CacheInvalidate drops every cached snapshot and returns how many were
	// removed. DELETE /api/cache is only served when it is set.
	CacheInvalidate func(ctx context.Context) (int, error)

	// Metrics serves /metrics; promhttp.Handler() when nil.
	Metrics http.Handler

	Logger        logger.Logger
	Observability *observability.Observability
}
