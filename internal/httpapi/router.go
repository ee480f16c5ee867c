// internal/httpapi/router.go
package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/kpi", methodMux(map[string]http.Handler{
		http.MethodGet: d.Summary,
	}))
	mux.HandleFunc("/api/kpi/sales", methodMux(map[string]http.Handler{
		http.MethodGet: d.Sales,
	}))
	mux.HandleFunc("/api/kpi/realestate", methodMux(map[string]http.Handler{
		http.MethodGet: d.Realestate,
	}))
	mux.HandleFunc("/api/kpi/hr", methodMux(map[string]http.Handler{
		http.MethodGet: d.HR,
	}))

	if d.Tasks != nil {
		mux.HandleFunc("/api/notion/tasks", methodMux(map[string]http.Handler{
			http.MethodGet:   d.Tasks,
			http.MethodPost:  d.Tasks,
			http.MethodPatch: d.Tasks,
		}))
	}

	if d.CacheInvalidate != nil {
		mux.HandleFunc("/api/cache", methodMux(map[string]http.Handler{
			http.MethodDelete: http.HandlerFunc(d.invalidateCache),
		}))
	}

	mux.HandleFunc("/api/registry", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(d.serveRegistry),
	}))
	mux.HandleFunc("/healthz", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(d.healthz),
	}))

	metrics := d.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	mux.Handle("/metrics", metrics)

	return mux
}

// NewHandler wraps the mux in the middleware chain.
func NewHandler(d Deps) http.Handler {
	routes := map[string]bool{"/metrics": true}
	if d.Registry != nil {
		for _, e := range d.Registry.Endpoints {
			routes[e.Path] = true
		}
	}

	return Chain(NewMux(d),
		RequestID,
		Recover(d.Logger),
		Trace,
		AccessLog(d.Logger, d.Observability, routes),
	)
}
