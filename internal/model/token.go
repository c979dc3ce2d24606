package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager issues and verifies signed, time-bound credentials.
type TokenManager interface {
	Issue(userID uuid.UUID, now time.Time) (string, error)
	Verify(token string, now time.Time) (uuid.UUID, error)
	TTL() time.Duration
}
