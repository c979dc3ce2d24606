package cache

import (
	"context"
	"time"

	"github.com/omnistat/platform-server/internal/model"
)

var _ model.Cache = (*Noop)(nil)

// Noop is the disabled cache: every read misses and every write is
// dropped. Services behave identically with Noop and with a live Redis,
// just without the read-through acceleration.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (Noop) Get(_ context.Context, _ string) (string, bool, error) { return "", false, nil }

func (Noop) Set(_ context.Context, _, _ string, _ time.Duration) error { return nil }

func (Noop) Delete(_ context.Context, _ ...string) error { return nil }

func (Noop) DeleteByPrefix(_ context.Context, _ string) error { return nil }

func (Noop) Ping(_ context.Context) error { return nil }
