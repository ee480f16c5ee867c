// internal/workers/kpi/hr-kpi/handler.go
package hrkpi

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

	"golang.org/x/sync/errgroup"
)

const (
	TaskType       = "hr-kpi"
	Route          = "/api/kpi/hr"
	FailureSummary = "Failed to fetch HR KPI"

	domain = "hr"
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

// ExecuteAt fetches recommendations and cases concurrently. Either fetch
// failing fails the whole result.
func (h *Handler) ExecuteAt(ctx context.Context, now time.Time) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.KPIComputeDuration.WithLabelValues(domain).Observe(time.Since(start).Seconds())
	}()

	var recommendations, cases []map[string]any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recommendations, err = h.fetcher.FetchTable(gctx, h.config.RecommendationTable, h.config.RecommendationFields)
		return err
	})
	g.Go(func() error {
		var err error
		cases, err = h.fetcher.FetchTable(gctx, h.config.CaseTable, h.config.CaseFields)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.KPIComputations.WithLabelValues(domain, "error").Inc()
		return nil, err
	}

	output := kpi.ComputeHRKPI(recommendations, cases, now.In(h.location))
	metrics.KPIComputations.WithLabelValues(domain, "success").Inc()

	h.logger.WithContext(ctx).Info("hr kpi computed", map[string]interface{}{
		"recommendations":   len(recommendations),
		"cases":             len(cases),
		"revenue":           output.Revenue,
		"documentScreening": output.Pipeline.DocumentScreening,
		"interviewing":      output.Pipeline.Interviewing,
	})
	return output, nil
}
