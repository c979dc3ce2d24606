// Package mocks contains testify mocks for the model interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/omnistat/platform-server/internal/model"
)

// UserStore is a mock implementation of model.UserStore.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// EventStore is a mock implementation of model.EventStore.
type EventStore struct {
	mock.Mock
}

func (m *EventStore) Create(ctx context.Context, event model.Event) (model.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(model.Event), args.Error(1)
}

func (m *EventStore) UsageTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) (model.UsageTotals, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(model.UsageTotals), args.Error(1)
}

func (m *EventStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EventStore) CountByTypeSince(ctx context.Context, eventType string, since time.Time) (int64, error) {
	args := m.Called(ctx, eventType, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EventStore) DistinctUsersSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EventStore) PeakUsageHour(ctx context.Context, since time.Time) (*int, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

func (m *EventStore) CostByUserSince(ctx context.Context, since time.Time) ([]model.UserCost, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserCost), args.Error(1)
}

// MetricStore is a mock implementation of model.MetricStore.
type MetricStore struct {
	mock.Mock
}

func (m *MetricStore) Create(ctx context.Context, metric model.Metric) (model.Metric, error) {
	args := m.Called(ctx, metric)
	return args.Get(0).(model.Metric), args.Error(1)
}

func (m *MetricStore) CreateBatch(ctx context.Context, metrics []model.Metric) (int, error) {
	args := m.Called(ctx, metrics)
	return args.Int(0), args.Error(1)
}

func (m *MetricStore) List(ctx context.Context, filter model.MetricFilter) ([]model.Metric, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Metric), args.Error(1)
}
