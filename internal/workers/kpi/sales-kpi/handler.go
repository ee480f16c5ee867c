// internal/workers/kpi/sales-kpi/handler.go
package saleskpi

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
	TaskType       = "sales-kpi"
	Route          = "/api/kpi/sales"
	FailureSummary = "Failed to fetch Sales KPI"

	domain = "sales"
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

// WithClock replaces the time source used to pick the current month.
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

// ExecuteAt computes the KPI for the month containing now.
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

	output := kpi.ComputeSalesKPI(records, now.In(h.location))
	metrics.KPIComputations.WithLabelValues(domain, "success").Inc()

	h.logger.WithContext(ctx).Info("sales kpi computed", map[string]interface{}{
		"records": len(records),
		"revenue": output.Revenue,
		"deals":   output.Deals,
	})
	return output, nil
}
