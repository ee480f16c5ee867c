// internal/workers/kpi/realestate-kpi/handler_test.go
package realestatekpi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"
	"kpi-dashboard/internal/common/logger"
	"kpi-dashboard/internal/kpi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		Table:    kpi.RealestateTable,
		Fields:   kpi.RealestateFields,
		Timeout:  5 * time.Second,
		Location: time.UTC,
	}
}

type stubFetcher struct {
	table   string
	records []map[string]any
	err     error
}

func (s *stubFetcher) FetchTable(ctx context.Context, table string, fields []string) ([]map[string]any, error) {
	s.table = table
	return s.records, s.err
}

func caseRecord(status, applied, registered, route string, ad, commission any) map[string]any {
	rec := map[string]any{kpi.RealestateFieldStatus: status}
	if applied != "" {
		rec[kpi.RealestateFieldApplicationDate] = applied
	}
	if registered != "" {
		rec[kpi.RealestateFieldRegistrationDate] = registered
	}
	if route != "" {
		rec[kpi.RealestateFieldRoute] = route
	}
	if ad != nil {
		rec[kpi.RealestateFieldAD] = ad
	}
	if commission != nil {
		rec[kpi.RealestateFieldCommission] = commission
	}
	return rec
}

func newTestHandler(t *testing.T, fetcher *stubFetcher) *Handler {
	return NewHandler(createTestConfig(), fetcher, logger.NewTestLogger(t)).
		WithClock(func() time.Time { return testNow })
}

func TestHandler_Execute(t *testing.T) {
	fetcher := &stubFetcher{records: []map[string]any{
		// contracted this month
		caseRecord("契約済み", "2024-02-05", "2024-01-20", "", 50000, "70000"),
		// under screening: projected and application, not confirmed
		caseRecord(kpi.StatusUnderScreening, "2024-02-12", "2024-02-01", "", 30000, 30000),
		// viewed via photo shoot: not a prospect
		caseRecord(kpi.StatusViewed, "", "2024-02-03", kpi.RoutePhotographyShoot, nil, nil),
		// registered, ordinary prospect
		caseRecord(kpi.StatusRegistered, "", "2023-12-01", "SUUMO", nil, nil),
	}}

	output, err := newTestHandler(t, fetcher).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, kpi.RealestateTable, fetcher.table)
	assert.Equal(t, float64(120000), output.Revenue)
	assert.Equal(t, 1, output.Contracts)
	assert.Equal(t, float64(180000), output.ProjectedRevenue)
	assert.Equal(t, kpi.RealestatePipeline{
		Prospects:      1,
		NewProspects:   2,
		Applications:   2,
		AwaitingReview: 1,
	}, output.Pipeline)

	require.Len(t, output.MonthlyRevenue, 12)
	assert.Equal(t, float64(120000), output.MonthlyRevenue[11].Revenue)
}

func TestHandler_ServeHTTP(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newTestHandler(t, &stubFetcher{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Route, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body, "projectedRevenue")
		assert.Contains(t, body, "monthlyRevenue")
	})

	t.Run("timeout", func(t *testing.T) {
		h := newTestHandler(t, &stubFetcher{err: apperrors.NewSourceTimeoutError(kpi.RealestateTable, context.DeadlineExceeded)})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Route, nil))

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		var body apperrors.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, FailureSummary, body.Error)
		assert.True(t, body.Retryable)
	})
}
