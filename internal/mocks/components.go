package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Cache is a mock implementation of model.Cache.
type Cache struct {
	mock.Mock
}

func (m *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *Cache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func (m *Cache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// TokenManager is a mock implementation of model.TokenManager.
type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) Issue(userID uuid.UUID, now time.Time) (string, error) {
	args := m.Called(userID, now)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) Verify(token string, now time.Time) (uuid.UUID, error) {
	args := m.Called(token, now)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *TokenManager) TTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// PasswordHasher is a mock implementation of model.PasswordHasher.
type PasswordHasher struct {
	mock.Mock
}

func (m *PasswordHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *PasswordHasher) Verify(plaintext, digest string) (bool, error) {
	args := m.Called(plaintext, digest)
	return args.Bool(0), args.Error(1)
}
