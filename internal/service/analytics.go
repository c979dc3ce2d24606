package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/model"
)

// AnalyticsConfig bounds the aggregation engine.
type AnalyticsConfig struct {
	MaxBatchSize     int
	DefaultStatsDays int
	MaxStatsDays     int
	CostPeriodDays   int
	UsageCacheTTL    time.Duration
	SummaryCacheTTL  time.Duration
	DashboardPeriod  time.Duration
	MetricsListLimit int
}

// Analytics is the aggregation engine: event and metric ingestion plus
// cached usage, cost and dashboard roll-ups. The store is authoritative;
// the cache only accelerates reads and is bypassed on any cache failure.
type Analytics struct {
	events  model.EventStore
	metrics model.MetricStore
	cache   model.Cache
	config  AnalyticsConfig
	logger  *logger.Logger
	now     func() time.Time
}

func NewAnalytics(
	events model.EventStore,
	metrics model.MetricStore,
	cache model.Cache,
	config AnalyticsConfig,
	logger *logger.Logger,
) *Analytics {
	return &Analytics{
		events:  events,
		metrics: metrics,
		cache:   cache,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

const (
	costSummaryKey      = "summary:costs"
	dashboardSummaryKey = "summary:dashboard"
)

func usageKeyPrefix(userID uuid.UUID) string {
	return "usage:" + userID.String() + ":"
}

// RecordEvent ingests one activity event. Unknown types are stored with
// Normalized unset and excluded from typed aggregation. The caller's
// cached usage windows are invalidated.
func (s *Analytics) RecordEvent(ctx context.Context, event model.Event) (model.Event, error) {
	if event.UserID == uuid.Nil {
		return model.Event{}, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}

	event.Type = strings.TrimSpace(event.Type)
	if event.Type == "" {
		return model.Event{}, fmt.Errorf("%w: event type is required", model.ErrValidation)
	}
	event.Normalized = model.KnownEventType(event.Type)

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.RecordedAt.IsZero() {
		event.RecordedAt = s.now()
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		s.logger.Error("Analytics service: failed to record event",
			"user_id", event.UserID,
			"type", event.Type,
			"error", err.Error())
		return model.Event{}, fmt.Errorf("failed to record event: %w", err)
	}

	if err := s.cache.DeleteByPrefix(ctx, usageKeyPrefix(event.UserID)); err != nil {
		s.logger.Debug("Analytics service: usage cache invalidation failed",
			"user_id", event.UserID,
			"error", err.Error())
	}

	s.logger.Debug("Analytics service: event recorded",
		"event_id", created.ID,
		"user_id", created.UserID,
		"type", created.Type)

	return created, nil
}

// RecordMetric ingests a single observability sample.
func (s *Analytics) RecordMetric(ctx context.Context, metric model.Metric) (model.Metric, error) {
	normalized, err := s.normalizeMetric(metric)
	if err != nil {
		return model.Metric{}, err
	}

	created, err := s.metrics.Create(ctx, normalized)
	if err != nil {
		s.logger.Error("Analytics service: failed to record metric",
			"name", normalized.Name,
			"error", err.Error())
		return model.Metric{}, fmt.Errorf("failed to record metric: %w", err)
	}

	return created, nil
}

// RecordMetricsBatch atomically ingests up to MaxBatchSize samples.
// A single malformed sample rejects the whole batch.
func (s *Analytics) RecordMetricsBatch(ctx context.Context, metrics []model.Metric) (int, error) {
	if len(metrics) == 0 {
		return 0, nil
	}
	if len(metrics) > s.config.MaxBatchSize {
		return 0, fmt.Errorf("%w: %d > %d", model.ErrBatchTooLarge, len(metrics), s.config.MaxBatchSize)
	}

	normalized := make([]model.Metric, len(metrics))
	for i, metric := range metrics {
		m, err := s.normalizeMetric(metric)
		if err != nil {
			return 0, fmt.Errorf("metric %d: %w", i, err)
		}
		normalized[i] = m
	}

	inserted, err := s.metrics.CreateBatch(ctx, normalized)
	if err != nil {
		s.logger.Error("Analytics service: failed to record metric batch",
			"size", len(normalized),
			"error", err.Error())
		return 0, fmt.Errorf("failed to record metric batch: %w", err)
	}

	s.logger.Debug("Analytics service: metric batch recorded",
		"size", inserted)

	return inserted, nil
}

// GetMetrics lists stored samples newest first.
func (s *Analytics) GetMetrics(ctx context.Context, filter model.MetricFilter) ([]model.Metric, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.config.MetricsListLimit
	}

	metrics, err := s.metrics.List(ctx, filter)
	if err != nil {
		s.logger.Error("Analytics service: failed to list metrics",
			"error", err.Error())
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}

	return metrics, nil
}

// UsageStats rolls up one user's events over a trailing window of whole
// days. Results are cached per user, window and UTC day.
func (s *Analytics) UsageStats(ctx context.Context, userID uuid.UUID, days int) (model.UsageRecord, error) {
	if userID == uuid.Nil {
		return model.UsageRecord{}, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}

	if days == 0 {
		days = s.config.DefaultStatsDays
	}
	if days < 1 {
		days = 1
	}
	if days > s.config.MaxStatsDays {
		days = s.config.MaxStatsDays
	}

	now := s.now().UTC()
	key := fmt.Sprintf("%s%d:%s", usageKeyPrefix(userID), days, now.Format("2006-01-02"))

	var cached model.UsageRecord
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	from := now.AddDate(0, 0, -days)
	totals, err := s.events.UsageTotals(ctx, userID, from, now)
	if err != nil {
		s.logger.Error("Analytics service: failed to aggregate usage",
			"user_id", userID,
			"error", err.Error())
		return model.UsageRecord{}, fmt.Errorf("failed to aggregate usage: %w", err)
	}

	record := model.UsageRecord{
		UserID:         userID,
		Days:           days,
		APICalls:       totals.APICalls,
		ToolExecutions: totals.ToolExecutions,
		Sessions:       totals.Sessions,
		TotalCost:      totals.TotalCost,
		PeriodStart:    from,
		PeriodEnd:      now,
	}

	s.cacheSet(ctx, key, record, s.config.UsageCacheTTL)

	return record, nil
}

// CostBreakdown aggregates cost across all users over the configured
// trailing period.
func (s *Analytics) CostBreakdown(ctx context.Context) (model.CostSummary, error) {
	var cached model.CostSummary
	if s.cacheGet(ctx, costSummaryKey, &cached) {
		return cached, nil
	}

	now := s.now().UTC()
	since := now.AddDate(0, 0, -s.config.CostPeriodDays)

	users, err := s.events.CostByUserSince(ctx, since)
	if err != nil {
		s.logger.Error("Analytics service: failed to aggregate costs",
			"error", err.Error())
		return model.CostSummary{}, fmt.Errorf("failed to aggregate costs: %w", err)
	}

	total := decimal.Zero
	for _, user := range users {
		total = total.Add(user.TotalCost)
	}

	summary := model.CostSummary{
		PeriodDays:  s.config.CostPeriodDays,
		TotalCost:   total,
		Users:       users,
		GeneratedAt: now,
	}

	s.cacheSet(ctx, costSummaryKey, summary, s.config.SummaryCacheTTL)

	return summary, nil
}

// DashboardMetrics computes system-wide aggregates over the trailing
// dashboard period.
func (s *Analytics) DashboardMetrics(ctx context.Context) (model.DashboardSummary, error) {
	var cached model.DashboardSummary
	if s.cacheGet(ctx, dashboardSummaryKey, &cached) {
		return cached, nil
	}

	now := s.now().UTC()
	since := now.Add(-s.config.DashboardPeriod)

	totalEvents, err := s.events.CountSince(ctx, since)
	if err != nil {
		return model.DashboardSummary{}, fmt.Errorf("failed to count events: %w", err)
	}

	activeUsers, err := s.events.DistinctUsersSince(ctx, since)
	if err != nil {
		return model.DashboardSummary{}, fmt.Errorf("failed to count active users: %w", err)
	}

	apiCalls, err := s.events.CountByTypeSince(ctx, model.EventTypeAPICall, since)
	if err != nil {
		return model.DashboardSummary{}, fmt.Errorf("failed to count api calls: %w", err)
	}

	peakHour, err := s.events.PeakUsageHour(ctx, since)
	if err != nil {
		return model.DashboardSummary{}, fmt.Errorf("failed to compute peak usage hour: %w", err)
	}

	var avgCalls float64
	if activeUsers > 0 {
		avgCalls = float64(apiCalls) / float64(activeUsers)
	}

	summary := model.DashboardSummary{
		TotalEvents:     totalEvents,
		ActiveUsers:     activeUsers,
		AvgCallsPerUser: avgCalls,
		PeakUsageHour:   peakHour,
		GeneratedAt:     now,
	}

	s.cacheSet(ctx, dashboardSummaryKey, summary, s.config.SummaryCacheTTL)

	return summary, nil
}

func (s *Analytics) normalizeMetric(metric model.Metric) (model.Metric, error) {
	metric.Name = strings.TrimSpace(metric.Name)
	if metric.Name == "" {
		return model.Metric{}, fmt.Errorf("%w: metric name is required", model.ErrValidation)
	}
	if math.IsNaN(metric.Value) || math.IsInf(metric.Value, 0) {
		return model.Metric{}, fmt.Errorf("%w: metric value must be finite", model.ErrValidation)
	}

	if metric.Kind == "" {
		metric.Kind = model.MetricKindCounter
	}
	if metric.ID == uuid.Nil {
		metric.ID = uuid.New()
	}
	if metric.RecordedAt.IsZero() {
		metric.RecordedAt = s.now()
	}

	return metric, nil
}

// cacheGet reads and decodes a cached roll-up. Any cache or decode
// failure reads as a miss.
func (s *Analytics) cacheGet(ctx context.Context, key string, out any) bool {
	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Debug("Analytics service: cache read failed",
			"key", key,
			"error", err.Error())
		return false
	}
	if !hit {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Debug("Analytics service: cache entry corrupt",
			"key", key,
			"error", err.Error())
		return false
	}
	return true
}

func (s *Analytics) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), ttl); err != nil {
		s.logger.Debug("Analytics service: cache write failed",
			"key", key,
			"error", err.Error())
	}
}
