package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/mocks"
	"github.com/omnistat/platform-server/internal/model"
)

type analyticsFixture struct {
	events    *mocks.EventStore
	metrics   *mocks.MetricStore
	cache     *mocks.Cache
	analytics *Analytics
}

func newAnalyticsFixture() *analyticsFixture {
	f := &analyticsFixture{
		events:  &mocks.EventStore{},
		metrics: &mocks.MetricStore{},
		cache:   &mocks.Cache{},
	}
	f.analytics = NewAnalytics(f.events, f.metrics, f.cache, AnalyticsConfig{
		MaxBatchSize:     100,
		DefaultStatsDays: 7,
		MaxStatsDays:     90,
		CostPeriodDays:   30,
		UsageCacheTTL:    5 * time.Minute,
		SummaryCacheTTL:  time.Minute,
		DashboardPeriod:  24 * time.Hour,
		MetricsListLimit: 100,
	}, logger.New(0))
	return f
}

func TestAnalytics_RecordEvent_FillsDefaults(t *testing.T) {
	f := newAnalyticsFixture()
	userID := uuid.New()
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f.analytics.now = func() time.Time { return now }

	f.events.On("Create", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
		return e.ID != uuid.Nil && e.RecordedAt.Equal(now) && e.Normalized && e.Type == "api_call"
	})).Return(model.Event{ID: uuid.New(), UserID: userID, Type: "api_call", Normalized: true}, nil)
	f.cache.On("DeleteByPrefix", mock.Anything, "usage:"+userID.String()+":").Return(nil)

	_, err := f.analytics.RecordEvent(context.Background(), model.Event{
		UserID: userID,
		Type:   "api_call",
	})
	require.NoError(t, err)
	f.events.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestAnalytics_RecordEvent_UnknownTypeStoredUnnormalized(t *testing.T) {
	f := newAnalyticsFixture()
	userID := uuid.New()

	f.events.On("Create", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
		return e.Type == "custom_signal" && !e.Normalized
	})).Return(model.Event{}, nil)
	f.cache.On("DeleteByPrefix", mock.Anything, mock.Anything).Return(nil)

	_, err := f.analytics.RecordEvent(context.Background(), model.Event{
		UserID: userID,
		Type:   "  custom_signal  ",
	})
	require.NoError(t, err)
	f.events.AssertExpectations(t)
}

func TestAnalytics_RecordEvent_RequiresUser(t *testing.T) {
	f := newAnalyticsFixture()

	_, err := f.analytics.RecordEvent(context.Background(), model.Event{Type: "api_call"})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.analytics.RecordEvent(context.Background(), model.Event{UserID: uuid.New()})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestAnalytics_RecordEvent_InvalidationFailureIsNotFatal(t *testing.T) {
	f := newAnalyticsFixture()
	userID := uuid.New()

	f.events.On("Create", mock.Anything, mock.Anything).Return(model.Event{}, nil)
	f.cache.On("DeleteByPrefix", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	_, err := f.analytics.RecordEvent(context.Background(), model.Event{UserID: userID, Type: "cost"})
	require.NoError(t, err)
}

func TestAnalytics_RecordMetric_DefaultsKind(t *testing.T) {
	f := newAnalyticsFixture()

	f.metrics.On("Create", mock.Anything, mock.MatchedBy(func(m model.Metric) bool {
		return m.Kind == model.MetricKindCounter && m.ID != uuid.Nil && !m.RecordedAt.IsZero()
	})).Return(model.Metric{}, nil)

	_, err := f.analytics.RecordMetric(context.Background(), model.Metric{
		Name:  "requests_total",
		Value: 1,
	})
	require.NoError(t, err)
	f.metrics.AssertExpectations(t)
}

func TestAnalytics_RecordMetric_Invalid(t *testing.T) {
	f := newAnalyticsFixture()

	_, err := f.analytics.RecordMetric(context.Background(), model.Metric{Name: "  ", Value: 1})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.analytics.RecordMetric(context.Background(), model.Metric{Name: "x", Value: math.NaN()})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.analytics.RecordMetric(context.Background(), model.Metric{Name: "x", Value: math.Inf(1)})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestAnalytics_RecordMetricsBatch_Empty(t *testing.T) {
	f := newAnalyticsFixture()

	n, err := f.analytics.RecordMetricsBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	f.metrics.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestAnalytics_RecordMetricsBatch_TooLarge(t *testing.T) {
	f := newAnalyticsFixture()

	batch := make([]model.Metric, 101)
	for i := range batch {
		batch[i] = model.Metric{Name: "m", Value: 1}
	}

	_, err := f.analytics.RecordMetricsBatch(context.Background(), batch)
	require.ErrorIs(t, err, model.ErrBatchTooLarge)
	f.metrics.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestAnalytics_RecordMetricsBatch_OneBadSampleRejectsAll(t *testing.T) {
	f := newAnalyticsFixture()

	batch := []model.Metric{
		{Name: "good", Value: 1},
		{Name: "", Value: 2},
	}

	_, err := f.analytics.RecordMetricsBatch(context.Background(), batch)
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "metric 1")
	f.metrics.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestAnalytics_RecordMetricsBatch_Success(t *testing.T) {
	f := newAnalyticsFixture()

	batch := []model.Metric{
		{Name: "a", Value: 1},
		{Name: "b", Value: 2, Kind: model.MetricKindGauge},
	}
	f.metrics.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ms []model.Metric) bool {
		return len(ms) == 2 && ms[0].Kind == model.MetricKindCounter && ms[1].Kind == model.MetricKindGauge
	})).Return(2, nil)

	n, err := f.analytics.RecordMetricsBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAnalytics_GetMetrics_DefaultLimit(t *testing.T) {
	f := newAnalyticsFixture()

	f.metrics.On("List", mock.Anything, mock.MatchedBy(func(fl model.MetricFilter) bool {
		return fl.Limit == 100
	})).Return([]model.Metric{}, nil)

	_, err := f.analytics.GetMetrics(context.Background(), model.MetricFilter{})
	require.NoError(t, err)
	f.metrics.AssertExpectations(t)
}

func TestAnalytics_UsageStats_ClampsWindow(t *testing.T) {
	f := newAnalyticsFixture()
	userID := uuid.New()

	f.cache.On("Get", mock.Anything, mock.Anything).Return("", false, nil)
	f.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, 5*time.Minute).Return(nil)
	f.events.On("UsageTotals", mock.Anything, userID, mock.Anything, mock.Anything).
		Return(model.UsageTotals{}, nil)

	record, err := f.analytics.UsageStats(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, record.Days, "zero window takes the default")

	record, err = f.analytics.UsageStats(context.Background(), userID, 500)
	require.NoError(t, err)
	assert.Equal(t, 90, record.Days, "oversized window clamps to the maximum")

	record, err = f.analytics.UsageStats(context.Background(), userID, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Days)
}

func TestAnalytics_UsageStats_CacheHitSkipsStore(t *testing.T) {
	f := newAnalyticsFixture()
	userID := uuid.New()
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f.analytics.now = func() time.Time { return now }

	cached := model.UsageRecord{
		UserID:    userID,
		Days:      7,
		APICalls:  42,
		TotalCost: decimal.RequireFromString("12.345678"),
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	key := "usage:" + userID.String() + ":7:2026-08-31"
	f.cache.On("Get", mock.Anything, key).Return(string(raw), true, nil)

	record, err := f.analytics.UsageStats(context.Background(), userID, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 42, record.APICalls)
	assert.True(t, record.TotalCost.Equal(decimal.RequireFromString("12.345678")))
	f.events.AssertNotCalled(t, "UsageTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalytics_UsageStats_ComputesAndCaches(t *testing.T) {
	f := newAnalyticsFixture()
	userID := uuid.New()
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f.analytics.now = func() time.Time { return now }

	key := "usage:" + userID.String() + ":7:2026-08-31"
	f.cache.On("Get", mock.Anything, key).Return("", false, nil)
	f.events.On("UsageTotals", mock.Anything, userID, now.AddDate(0, 0, -7), now).
		Return(model.UsageTotals{
			APICalls:       10,
			ToolExecutions: 3,
			Sessions:       2,
			TotalCost:      decimal.RequireFromString("4.50"),
		}, nil)
	f.cache.On("Set", mock.Anything, key, mock.Anything, 5*time.Minute).Return(nil)

	record, err := f.analytics.UsageStats(context.Background(), userID, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 10, record.APICalls)
	assert.EqualValues(t, 3, record.ToolExecutions)
	assert.EqualValues(t, 2, record.Sessions)
	assert.True(t, record.TotalCost.Equal(decimal.RequireFromString("4.50")))
	assert.Equal(t, now.AddDate(0, 0, -7), record.PeriodStart)
	f.cache.AssertExpectations(t)
}

func TestAnalytics_UsageStats_CorruptCacheEntryFallsThrough(t *testing.T) {
	f := newAnalyticsFixture()
	userID := uuid.New()

	f.cache.On("Get", mock.Anything, mock.Anything).Return("{not json", true, nil)
	f.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.events.On("UsageTotals", mock.Anything, userID, mock.Anything, mock.Anything).
		Return(model.UsageTotals{APICalls: 5}, nil)

	record, err := f.analytics.UsageStats(context.Background(), userID, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 5, record.APICalls)
}

func TestAnalytics_CostBreakdown_ExactDecimalSum(t *testing.T) {
	f := newAnalyticsFixture()
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()

	f.cache.On("Get", mock.Anything, "summary:costs").Return("", false, nil)
	f.cache.On("Set", mock.Anything, "summary:costs", mock.Anything, time.Minute).Return(nil)
	f.events.On("CostByUserSince", mock.Anything, mock.Anything).Return([]model.UserCost{
		{UserID: u1, TotalCost: decimal.RequireFromString("0.1"), APICalls: 1},
		{UserID: u2, TotalCost: decimal.RequireFromString("0.2"), APICalls: 2},
		{UserID: u3, TotalCost: decimal.RequireFromString("0.3"), APICalls: 3},
	}, nil)

	summary, err := f.analytics.CostBreakdown(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.TotalCost.Equal(decimal.RequireFromString("0.6")),
		"got %s", summary.TotalCost)
	assert.Equal(t, 30, summary.PeriodDays)
	assert.Len(t, summary.Users, 3)
}

func TestAnalytics_DashboardMetrics(t *testing.T) {
	f := newAnalyticsFixture()
	peak := 14

	f.cache.On("Get", mock.Anything, "summary:dashboard").Return("", false, nil)
	f.cache.On("Set", mock.Anything, "summary:dashboard", mock.Anything, time.Minute).Return(nil)
	f.events.On("CountSince", mock.Anything, mock.Anything).Return(int64(200), nil)
	f.events.On("DistinctUsersSince", mock.Anything, mock.Anything).Return(int64(4), nil)
	f.events.On("CountByTypeSince", mock.Anything, model.EventTypeAPICall, mock.Anything).Return(int64(100), nil)
	f.events.On("PeakUsageHour", mock.Anything, mock.Anything).Return(&peak, nil)

	summary, err := f.analytics.DashboardMetrics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 200, summary.TotalEvents)
	assert.EqualValues(t, 4, summary.ActiveUsers)
	assert.Equal(t, 25.0, summary.AvgCallsPerUser)
	require.NotNil(t, summary.PeakUsageHour)
	assert.Equal(t, 14, *summary.PeakUsageHour)
}

func TestAnalytics_DashboardMetrics_NoActivity(t *testing.T) {
	f := newAnalyticsFixture()

	f.cache.On("Get", mock.Anything, "summary:dashboard").Return("", false, nil)
	f.cache.On("Set", mock.Anything, "summary:dashboard", mock.Anything, time.Minute).Return(nil)
	f.events.On("CountSince", mock.Anything, mock.Anything).Return(int64(0), nil)
	f.events.On("DistinctUsersSince", mock.Anything, mock.Anything).Return(int64(0), nil)
	f.events.On("CountByTypeSince", mock.Anything, model.EventTypeAPICall, mock.Anything).Return(int64(0), nil)
	f.events.On("PeakUsageHour", mock.Anything, mock.Anything).Return(nil, nil)

	summary, err := f.analytics.DashboardMetrics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.AvgCallsPerUser)
	assert.Nil(t, summary.PeakUsageHour)
}
