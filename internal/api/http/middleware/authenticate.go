package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apicontext "github.com/omnistat/platform-server/internal/api/http/context"
	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/model"
)

// TokenVerifier resolves a bearer token to its live subject.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (model.User, error)
}

// Authenticate validates bearer tokens and injects the caller into the
// request context.
type Authenticate struct {
	verifier       TokenVerifier
	contextManager *apicontext.Manager
	logger         *logger.Logger
}

func NewAuthenticate(verifier TokenVerifier, contextManager *apicontext.Manager, logger *logger.Logger) *Authenticate {
	return &Authenticate{
		verifier:       verifier,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing authorization token")
			return
		}

		user, err := m.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			m.logger.Debug("Authenticate middleware: token rejected",
				"path", r.URL.Path,
				"error", err.Error())
			unauthorized(w, "invalid authorization token")
			return
		}

		ctx := m.contextManager.SetUser(r.Context(), user)
		ctx = m.contextManager.SetToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
