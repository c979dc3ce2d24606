package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// User represents a stored user with authentication material.
// PasswordHash is never serialized or logged.
type User struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	FirstName    string         `json:"first_name,omitempty"`
	LastName     string         `json:"last_name,omitempty"`
	Active       bool           `json:"active"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ProfilePatch carries optional profile mutations. Nil fields are left
// unchanged; a non-nil Password is re-hashed before storage.
type ProfilePatch struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Metadata  map[string]any
}

// RegisterParams contains parameters to create a new user.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Metadata  map[string]any
}
