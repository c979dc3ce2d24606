package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/model"
)

// TokenService composes the TokenManager with the session cache. Issuing a
// token writes a session marker keyed by the token signature; verification
// consults the marker first and falls back to cryptographic verification.
// Cache failures never fail the operation.
type TokenService struct {
	manager model.TokenManager
	cache   model.Cache
	logger  *logger.Logger
	now     func() time.Time
}

func NewTokenService(manager model.TokenManager, cache model.Cache, logger *logger.Logger) *TokenService {
	return &TokenService{
		manager: manager,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// sessionMarker is the cached record of a live session. ExpiresAt duplicates
// the claim so a stale marker is never trusted past the token lifetime.
type sessionMarker struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt int64     `json:"expires_at"`
}

func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	now := s.now()

	token, err := s.manager.Issue(userID, now)
	if err != nil {
		return "", err
	}

	ttl := s.manager.TTL()
	marker, err := json.Marshal(sessionMarker{
		UserID:    userID,
		ExpiresAt: now.Add(ttl).Unix(),
	})
	if err != nil {
		return token, nil
	}

	if key, ok := sessionKey(token); ok {
		if err := s.cache.Set(ctx, key, string(marker), ttl); err != nil {
			s.logger.Debug("Token service: session marker write failed",
				"user_id", userID,
				"error", err.Error())
		}
	}

	return token, nil
}

// GetUserID resolves a token to its subject. A valid cached session marker
// short-circuits signature verification.
func (s *TokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	now := s.now()

	key, hasKey := sessionKey(token)
	if hasKey {
		raw, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Debug("Token service: session marker read failed",
				"error", err.Error())
		} else if hit {
			var marker sessionMarker
			if err := json.Unmarshal([]byte(raw), &marker); err == nil && now.Unix() < marker.ExpiresAt {
				return marker.UserID, nil
			}
		}
	}

	userID, err := s.manager.Verify(token, now)
	if err != nil {
		if hasKey {
			if cacheErr := s.cache.Delete(ctx, key); cacheErr != nil {
				s.logger.Debug("Token service: session marker cleanup failed",
					"error", cacheErr.Error())
			}
		}
		return uuid.Nil, err
	}

	return userID, nil
}

// Revoke drops the session marker so the cache fast path no longer accepts
// the token. The token itself stays cryptographically valid until expiry.
func (s *TokenService) Revoke(ctx context.Context, token string) {
	key, ok := sessionKey(token)
	if !ok {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Debug("Token service: session revocation failed",
			"error", err.Error())
	}
}

// sessionKey derives the cache key from the token's signature segment.
// The signature alone identifies the token without storing the full
// credential in the cache.
func sessionKey(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[2] == "" {
		return "", false
	}
	return "session:" + parts[2], true
}
