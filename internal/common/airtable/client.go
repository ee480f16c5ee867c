// internal/common/airtable/client.go
package airtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	httpclient "kpi-dashboard/internal/common/http"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/metrics"
	"kpi-dashboard/internal/common/observability"

	airtableapi "github.com/mehanizm/airtable"
	"go.opentelemetry.io/otel/attribute"
)

// the transport paces requests, retries included
const libraryRateCeiling = 1000

// Record is one row as returned by the list endpoint.
type Record struct {
	ID          string
	CreatedTime string
	Fields      map[string]any
}

// Client reads one base. Each base gets its own client so the per-base
// request limit applies separately.
type Client struct {
	api      *airtableapi.Client
	baseID   string
	pageSize int
	logger   logger.Logger
}

type Config struct {
	BaseURL    string
	BaseID     string
	APIKey     string
	PageSize   int
	Timeout    time.Duration
	MaxRetries int
	RateLimit  float64
}

func NewClient(cfg Config, log logger.Logger, opts ...httpclient.Option) (*Client, error) {
	if cfg.PageSize <= 0 || cfg.PageSize > 100 {
		cfg.PageSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = apperrors.GetRetryCount(apperrors.ErrCodeSourceUnavailable)
	}
	opts = append([]httpclient.Option{
		httpclient.WithRateLimit(cfg.RateLimit, 1),
		httpclient.WithRetries(cfg.MaxRetries, time.Second),
	}, opts...)

	api := airtableapi.NewClient(cfg.APIKey)
	api.SetCustomClient(httpclient.NewClient(cfg.Timeout, opts...).HTTPClient())
	api.SetRateLimit(libraryRateCeiling)
	if cfg.BaseURL != "" {
		if err := api.SetBaseURL(cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid record store base url: %w", err)
		}
	}

	return &Client{
		api:      api,
		baseID:   cfg.BaseID,
		pageSize: cfg.PageSize,
		logger:   log.WithFields(map[string]interface{}{"base": cfg.BaseID}),
	}, nil
}

// BaseID returns the base this client reads.
func (c *Client) BaseID() string {
	return c.baseID
}

// ListRecords returns every record of table projected to fields, following
// pagination offsets until the store reports no more pages. An offset seen
// twice fails the listing.
func (c *Client) ListRecords(ctx context.Context, table string, fields []string) ([]Record, error) {
	ctx, span := observability.StartSpan(ctx, "airtable.list_records",
		attribute.String("airtable.base", c.baseID),
		attribute.String("airtable.table", table),
	)
	start := time.Now()

	var (
		all    []Record
		offset string
		pages  int
		seen   = map[string]bool{}
		err    error
	)
	for {
		var page *airtableapi.Records
		page, err = c.listPage(ctx, table, fields, offset)
		if err != nil {
			break
		}
		pages++
		for _, r := range page.Records {
			if r != nil {
				all = append(all, Record{ID: r.ID, CreatedTime: r.CreatedTime, Fields: r.Fields})
			}
		}
		if page.Offset == "" {
			break
		}
		if seen[page.Offset] {
			err = apperrors.NewSourceUnavailableError(table, fmt.Errorf("pagination offset %q repeated after %d pages", page.Offset, pages))
			break
		}
		seen[page.Offset] = true
		offset = page.Offset
	}

	metrics.SourceFetchDuration.WithLabelValues(table).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("airtable.pages", pages), attribute.Int("airtable.records", len(all)))
	observability.EndSpan(span, err)

	if err != nil {
		metrics.SourceFetches.WithLabelValues(table, "error").Inc()
		return nil, err
	}
	metrics.SourceFetches.WithLabelValues(table, "success").Inc()
	metrics.SourceRecords.WithLabelValues(table).Set(float64(len(all)))

	c.logger.WithContext(ctx).Debug("fetched table", map[string]interface{}{
		"table":      table,
		"pages":      pages,
		"records":    len(all),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return all, nil
}

// FetchTable returns the field maps of every record of table projected to
// fields. Records with no populated fields come back as empty maps.
func (c *Client) FetchTable(ctx context.Context, table string, fields []string) ([]map[string]any, error) {
	records, err := c.ListRecords(ctx, table, fields)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		f := r.Fields
		if f == nil {
			f = map[string]any{}
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *Client) listPage(ctx context.Context, table string, fields []string, offset string) (*airtableapi.Records, error) {
	// the library joins path segments unescaped
	call := c.api.GetTable(url.PathEscape(c.baseID), url.PathEscape(table)).
		GetRecords().
		PageSize(c.pageSize)
	if len(fields) > 0 {
		call = call.ReturnFields(fields...)
	}
	if offset != "" {
		call = call.WithOffset(offset)
	}

	page, err := call.DoContext(ctx)
	if err != nil {
		return nil, sourceError(ctx, table, err)
	}
	return page, nil
}

func sourceError(ctx context.Context, table string, err error) error {
	var httpErr *airtableapi.HTTPClientError
	if errors.As(err, &httpErr) {
		return statusError(table, httpErr.StatusCode, httpErr.Error())
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewSourceTimeoutError(table, err)
	}
	return apperrors.NewSourceUnavailableError(table, err)
}

func statusError(table string, status int, details string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewSourceAuthFailedError("airtable", details)
	case status == http.StatusNotFound:
		return apperrors.NewSourceNotFoundError(table, details)
	case status == http.StatusTooManyRequests:
		return apperrors.NewSourceRateLimitedError(table)
	default:
		return apperrors.NewSourceUnavailableError(table, errors.New(details))
	}
}
