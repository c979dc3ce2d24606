package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventStore defines persistence and aggregation operations for events.
type EventStore interface {
	Create(ctx context.Context, event Event) (Event, error)
	UsageTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) (UsageTotals, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByTypeSince(ctx context.Context, eventType string, since time.Time) (int64, error)
	DistinctUsersSince(ctx context.Context, since time.Time) (int64, error)
	PeakUsageHour(ctx context.Context, since time.Time) (*int, error)
	CostByUserSince(ctx context.Context, since time.Time) ([]UserCost, error)
}

// Event represents an immutable activity record attributed to a user.
// Normalized is false for event types outside the documented enumeration;
// such events are stored but excluded from typed aggregation.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Type       string          `json:"type"`
	Normalized bool            `json:"normalized"`
	Value      decimal.Decimal `json:"value"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Documented event types. Ingestion accepts any string; only these
// participate in typed usage aggregation.
const (
	EventTypeAPICall       = "api_call"
	EventTypeToolExecution = "tool_execution"
	EventTypeCost          = "cost"
	EventTypeSession       = "session"
)

// KnownEventType reports whether t belongs to the documented enumeration.
func KnownEventType(t string) bool {
	switch t {
	case EventTypeAPICall, EventTypeToolExecution, EventTypeCost, EventTypeSession:
		return true
	}
	return false
}

// UsageTotals holds per-type aggregates over one user's events in a window.
type UsageTotals struct {
	APICalls       int64
	ToolExecutions int64
	Sessions       int64
	TotalCost      decimal.Decimal
}
