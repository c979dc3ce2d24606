package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageRecord is a derived, time-windowed roll-up of one user's events.
// It is computed on demand and cached, never stored as a source of truth.
type UsageRecord struct {
	UserID         uuid.UUID       `json:"user_id"`
	Days           int             `json:"days"`
	APICalls       int64           `json:"api_calls"`
	ToolExecutions int64           `json:"tool_executions"`
	Sessions       int64           `json:"sessions"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
}

// UserCost is one user's share of a system-wide cost breakdown.
type UserCost struct {
	UserID    uuid.UUID       `json:"user_id"`
	TotalCost decimal.Decimal `json:"total_cost"`
	APICalls  int64           `json:"api_calls"`
}

// CostSummary aggregates cost across all users over a trailing period.
type CostSummary struct {
	PeriodDays  int             `json:"period_days"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Users       []UserCost      `json:"user_breakdown"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// DashboardSummary holds system-wide aggregates over the trailing period.
type DashboardSummary struct {
	TotalEvents     int64     `json:"total_events"`
	ActiveUsers     int64     `json:"active_users"`
	AvgCallsPerUser float64   `json:"avg_calls_per_user"`
	PeakUsageHour   *int      `json:"peak_usage_hour,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// HealthStatus is a read-only probe result. Only an unreachable store
// makes the service unhealthy; the cache is optional.
type HealthStatus struct {
	StoreReachable bool    `json:"store_reachable"`
	CacheReachable bool    `json:"cache_reachable"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}
