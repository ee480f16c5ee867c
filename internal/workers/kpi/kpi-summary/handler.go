// internal/workers/kpi/kpi-summary/handler.go
package kpisummary

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/requestid"

	"golang.org/x/sync/errgroup"
)

const (
	TaskType       = "kpi-summary"
	Route          = "/api/kpi"
	FailureSummary = "Failed to fetch KPI summary"
)

// Handler runs the three domain workers concurrently against one reading of
// the clock. The summary is all or nothing: one failing domain fails the
// request.
type Handler struct {
	config     *Config
	sales      SalesSource
	realestate RealestateSource
	hr         HRSource
	clock      func() time.Time
	logger     logger.Logger
	errors     *apperrors.ErrorHandler
}

func NewHandler(config *Config, sales SalesSource, realestate RealestateSource, hr HRSource, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		sales:      sales,
		realestate: realestate,
		hr:         hr,
		clock:      time.Now,
		logger:     l,
		errors:     apperrors.NewErrorHandler(l),
	}
}

// WithClock replaces the time source shared by the domains.
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
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	start := time.Now()
	now := h.clock()
	out := &Output{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Sales, err = h.sales.ExecuteAt(gctx, now)
		return err
	})
	g.Go(func() error {
		var err error
		out.Realestate, err = h.realestate.ExecuteAt(gctx, now)
		return err
	})
	g.Go(func() error {
		var err error
		out.HR, err = h.hr.ExecuteAt(gctx, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h.logger.WithContext(ctx).Info("kpi summary computed", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
	})
	return out, nil
}
