// Package context carries the authenticated caller through request contexts.
package context

import (
	"context"

	"github.com/google/uuid"

	"github.com/omnistat/platform-server/internal/model"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// Manager sets and retrieves the authenticated user and the presented
// token on request contexts.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetUser stores the authenticated user on the context.
func (m *Manager) SetUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// User retrieves the authenticated user from the context.
func (m *Manager) User(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}

// UserID retrieves the authenticated user's ID from the context.
func (m *Manager) UserID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := m.User(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

// SetToken stores the presented bearer token on the context.
func (m *Manager) SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// Token retrieves the presented bearer token from the context.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
