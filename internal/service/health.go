package service

import (
	"context"
	"time"

	"github.com/omnistat/platform-server/internal/model"
)

// Pinger is the liveness probe a dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health probes the store and cache. Only an unreachable store makes the
// service unhealthy; the cache is an optional accelerator.
type Health struct {
	store     Pinger
	cache     model.Cache
	startedAt time.Time
	now       func() time.Time
}

func NewHealth(store Pinger, cache model.Cache) *Health {
	return &Health{
		store:     store,
		cache:     cache,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

func (h *Health) Check(ctx context.Context) model.HealthStatus {
	return model.HealthStatus{
		StoreReachable: h.store.Ping(ctx) == nil,
		CacheReachable: h.cache.Ping(ctx) == nil,
		UptimeSeconds:  h.now().Sub(h.startedAt).Seconds(),
	}
}

// Healthy reports whether the status should answer readiness probes
// positively.
func Healthy(status model.HealthStatus) bool {
	return status.StoreReachable
}
