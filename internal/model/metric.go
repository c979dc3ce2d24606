package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MetricStore defines persistence operations for metrics.
// CreateBatch is atomic: either every metric is persisted or none is.
type MetricStore interface {
	Create(ctx context.Context, metric Metric) (Metric, error)
	CreateBatch(ctx context.Context, metrics []Metric) (int, error)
	List(ctx context.Context, filter MetricFilter) ([]Metric, error)
}

// Metric represents an immutable, named numeric observability sample.
type Metric struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Value      float64        `json:"value"`
	Kind       MetricKind     `json:"kind"`
	UserID     *uuid.UUID     `json:"user_id,omitempty"`
	Service    string         `json:"service,omitempty"`
	Endpoint   string         `json:"endpoint,omitempty"`
	Labels     map[string]any `json:"labels,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// MetricKind enumerates metric sample kinds.
type MetricKind string

const (
	// MetricKindCounter is a monotonically increasing sample.
	MetricKindCounter MetricKind = "counter"
	// MetricKindGauge is a point-in-time sample.
	MetricKindGauge MetricKind = "gauge"
	// MetricKindHistogram is a distribution sample.
	MetricKindHistogram MetricKind = "histogram"
)

// MetricFilter narrows metric listings. Zero values match everything.
type MetricFilter struct {
	Name    string
	Kind    MetricKind
	Service string
	UserID  *uuid.UUID
	Limit   int
}
