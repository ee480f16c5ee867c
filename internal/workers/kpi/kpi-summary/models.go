// internal/workers/kpi/kpi-summary/models.go
package kpisummary

import (
	"context"
	"time"

	"kpi-dashboard/internal/kpi"
)

type Output = kpi.Summary

type SalesSource interface {
	ExecuteAt(ctx context.Context, now time.Time) (*kpi.SalesKPI, error)
}

type RealestateSource interface {
	ExecuteAt(ctx context.Context, now time.Time) (*kpi.RealestateKPI, error)
}

type HRSource interface {
	ExecuteAt(ctx context.Context, now time.Time) (*kpi.HRKPI, error)
}
