// internal/common/cache/fetcher.go
package cache

import (
	"context"
	"errors"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/metrics"
)

// Fetcher is the record source capability: all records of a table projected
// to fields.
type Fetcher interface {
	FetchTable(ctx context.Context, table string, fields []string) ([]map[string]any, error)
}

// CachedFetcher serves snapshots from the RecordCache and falls back to the
// wrapped fetcher on a miss. Cache errors never fail a fetch.
type CachedFetcher struct {
	next   Fetcher
	cache  *RecordCache
	base   string
	logger logger.Logger
}

func NewCachedFetcher(next Fetcher, cache *RecordCache, base string, log logger.Logger) *CachedFetcher {
	return &CachedFetcher{
		next:   next,
		cache:  cache,
		base:   base,
		logger: log.WithFields(map[string]interface{}{"base": base}),
	}
}

func (f *CachedFetcher) FetchTable(ctx context.Context, table string, fields []string) ([]map[string]any, error) {
	key := f.cache.Key(f.base, table, fields)

	records, err := f.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return records, nil
	case errors.Is(err, ErrMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		f.logger.Warn("record cache read failed", map[string]interface{}{
			"table":     table,
			"errorCode": apperrors.Normalize(err).Code,
			"error":     err.Error(),
		})
	}

	records, err = f.next.FetchTable(ctx, table, fields)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, records); err != nil {
		f.logger.Warn("record cache write failed", map[string]interface{}{
			"table":     table,
			"errorCode": apperrors.Normalize(err).Code,
			"error":     err.Error(),
		})
	}
	return records, nil
}
