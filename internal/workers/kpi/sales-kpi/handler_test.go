// internal/workers/kpi/sales-kpi/handler_test.go
package saleskpi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kpi-dashboard/internal/common/cache"
	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/common/requestid"
	"kpi-dashboard/internal/kpi"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		Table:    kpi.SalesTable,
		Fields:   kpi.SalesFields,
		Timeout:  5 * time.Second,
		Location: time.UTC,
	}
}

type stubFetcher struct {
	calls   int
	table   string
	fields  []string
	records []map[string]any
	err     error
}

func (s *stubFetcher) FetchTable(ctx context.Context, table string, fields []string) ([]map[string]any, error) {
	s.calls++
	s.table = table
	s.fields = fields
	return s.records, s.err
}

func createTestRecords() []map[string]any {
	return []map[string]any{
		{kpi.SalesFieldOutcome: kpi.SalesOutcomePaid, kpi.SalesFieldPaymentDate: "2024-02-10", kpi.SalesFieldAmount: float64(500000)},
		{kpi.SalesFieldOutcome: kpi.SalesOutcomeConsider},
		{kpi.SalesFieldOutcome: kpi.SalesOutcomeVerbalDeal},
		{kpi.SalesFieldMeetingDate: "2024-02-20"},
		{kpi.SalesFieldOutcome: kpi.SalesOutcomePaid, kpi.SalesFieldPaymentDate: "2024-01-31", kpi.SalesFieldAmount: "120000"},
	}
}

func newTestHandler(t *testing.T, fetcher cache.Fetcher) *Handler {
	return NewHandler(createTestConfig(), fetcher, logger.NewTestLogger(t)).
		WithClock(func() time.Time { return testNow })
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	fetcher := &stubFetcher{records: createTestRecords()}
	h := newTestHandler(t, fetcher)

	output, err := h.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, kpi.SalesTable, fetcher.table)
	assert.Equal(t, kpi.SalesFields, fetcher.fields)

	assert.Equal(t, float64(500000), output.Revenue)
	assert.Equal(t, 1, output.Deals)
	assert.Equal(t, kpi.SalesPipeline{Pending: 1, Considering: 1, WaitingPayment: 1}, output.Pipeline)

	require.Len(t, output.MonthlyRevenue, 12)
	assert.Equal(t, "2024/01", output.MonthlyRevenue[10].Month)
	assert.Equal(t, float64(120000), output.MonthlyRevenue[10].Revenue)
	assert.Equal(t, "2024/02", output.MonthlyRevenue[11].Month)
	assert.Equal(t, float64(500000), output.MonthlyRevenue[11].Revenue)
}

func TestHandler_Execute_EmptyTable(t *testing.T) {
	h := newTestHandler(t, &stubFetcher{})

	output, err := h.Execute(context.Background())

	require.NoError(t, err)
	assert.Zero(t, output.Revenue)
	assert.Zero(t, output.Deals)
	assert.Len(t, output.MonthlyRevenue, 12)
}

func TestHandler_Execute_UsesConfiguredLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	cfg := createTestConfig()
	cfg.Location = tokyo

	// 2024-01-31 20:00 UTC is already February in Tokyo.
	fetcher := &stubFetcher{records: []map[string]any{
		{kpi.SalesFieldOutcome: kpi.SalesOutcomePaid, kpi.SalesFieldPaymentDate: "2024-02-01", kpi.SalesFieldAmount: 1000},
	}}
	h := NewHandler(cfg, fetcher, logger.NewNoOpLogger()).
		WithClock(func() time.Time { return time.Date(2024, time.January, 31, 20, 0, 0, 0, time.UTC) })

	output, err := h.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, float64(1000), output.Revenue)
}

func TestHandler_ExecuteAt_MonthBoundary(t *testing.T) {
	fetcher := &stubFetcher{records: []map[string]any{
		{kpi.SalesFieldOutcome: kpi.SalesOutcomePaid, kpi.SalesFieldPaymentDate: "2024-02-29", kpi.SalesFieldAmount: 1000},
	}}
	h := newTestHandler(t, fetcher)

	feb, err := h.ExecuteAt(context.Background(), time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	mar, err := h.ExecuteAt(context.Background(), time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, float64(1000), feb.Revenue)
	assert.Zero(t, mar.Revenue)
	assert.Equal(t, "2024/02", mar.MonthlyRevenue[10].Month)
	assert.Equal(t, float64(1000), mar.MonthlyRevenue[10].Revenue)
}

func TestHandler_Execute_SourceFailure(t *testing.T) {
	fetcher := &stubFetcher{err: apperrors.NewSourceUnavailableError(kpi.SalesTable, errors.New("connection refused"))}
	h := newTestHandler(t, fetcher)

	output, err := h.Execute(context.Background())

	assert.Nil(t, output)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSourceUnavailable, apperrors.Normalize(err).Code)
}

// ==========================
// HTTP Tests
// ==========================

func TestHandler_ServeHTTP(t *testing.T) {
	h := newTestHandler(t, &stubFetcher{records: createTestRecords()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Route, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(500000), body["revenue"])
	assert.Equal(t, float64(1), body["deals"])
	assert.Equal(t, map[string]any{"pending": float64(1), "considering": float64(1), "waitingPayment": float64(1)}, body["pipeline"])
}

func TestHandler_ServeHTTP_Failure(t *testing.T) {
	fetcher := &stubFetcher{err: apperrors.NewSourceUnavailableError(kpi.SalesTable, errors.New("boom"))}
	h := newTestHandler(t, fetcher)

	req := httptest.NewRequest(http.MethodGet, Route, nil)
	req = req.WithContext(requestid.WithID(req.Context(), "req-42"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body apperrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, FailureSummary, body.Error)
	assert.Equal(t, apperrors.ErrCodeSourceUnavailable, body.Code)
	assert.Equal(t, "req-42", body.RequestID)
}

// ==========================
// Cache Integration
// ==========================

func TestHandler_Execute_ServedFromCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	upstream := &stubFetcher{records: createTestRecords()}
	cached := cache.NewCachedFetcher(upstream, cache.NewRecordCache(rdb, time.Minute, "kpi"), "appSales", logger.NewNoOpLogger())
	h := newTestHandler(t, cached)

	first, err := h.Execute(context.Background())
	require.NoError(t, err)
	second, err := h.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, first, second)
}
