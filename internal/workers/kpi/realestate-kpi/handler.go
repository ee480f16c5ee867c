// internal/workers/kpi/realestate-kpi/handler.go
package realestatekpi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kpi-dashboard/internal/common/cache"
	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/metrics"
	"kpi-dashboard/internal/common/requestid"
	"kpi-dashboard/internal/kpi"
)

const (
	TaskType       = "realestate-kpi"
	Route          = "/api/kpi/realestate"
	FailureSummary = "Failed to fetch Realestate KPI"

	domain = "realestate"
)

type Handler struct {
	config   *Config
	fetcher  cache.Fetcher
	location *time.Location
	clock    func() time.Time
	logger   logger.Logger
	errors   *apperrors.ErrorHandler
}

func NewHandler(config *Config, fetcher cache.Fetcher, log logger.Logger) *Handler {
	loc := config.Location
	if loc == nil {
		loc = time.Local
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		fetcher:  fetcher,
		location: loc,
		clock:    time.Now,
		logger:   l,
		errors:   apperrors.NewErrorHandler(l),
	}
}

func (h *Handler) WithClock(clock func() time.Time) *Handler {
	h.clock = clock
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	output, err := h.Execute(r.Context())
	if err != nil {
		h.errors.Handle(w, requestid.FromContext(r.Context()), FailureSummary, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(output)
}

func (h *Handler) Execute(ctx context.Context) (*Output, error) {
	return h.ExecuteAt(ctx, h.clock())
}

// ExecuteAt fetches the case management table and aggregates it for the
// month containing now. Confirmed and projected revenue share the fee sum but use
// different status exclusions.
func (h *Handler) ExecuteAt(ctx context.Context, now time.Time) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.KPIComputeDuration.WithLabelValues(domain).Observe(time.Since(start).Seconds())
	}()

	records, err := h.fetcher.FetchTable(ctx, h.config.Table, h.config.Fields)
	if err != nil {
		metrics.KPIComputations.WithLabelValues(domain, "error").Inc()
		return nil, err
	}

	output := kpi.ComputeRealestateKPI(records, now.In(h.location))
	metrics.KPIComputations.WithLabelValues(domain, "success").Inc()

	h.logger.WithContext(ctx).Info("realestate kpi computed", map[string]interface{}{
		"records":          len(records),
		"revenue":          output.Revenue,
		"projectedRevenue": output.ProjectedRevenue,
		"contracts":        output.Contracts,
	})
	return output, nil
}
