package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	apicontext "github.com/omnistat/platform-server/internal/api/http/context"
	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/model"
	"github.com/omnistat/platform-server/internal/service"
)

// AuthService is the credential lifecycle the auth handler exposes.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (service.LoginResult, error)
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch model.ProfilePatch) (model.User, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// TokenRevoker drops a session so the cache fast path stops accepting it.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string)
}

// Auth handles credential lifecycle routes.
type Auth struct {
	service        AuthService
	tokens         TokenRevoker
	contextManager *apicontext.Manager
	logger         *logger.Logger
}

func NewAuth(service AuthService, tokens TokenRevoker, contextManager *apicontext.Manager, logger *logger.Logger) *Auth {
	return &Auth{
		service:        service,
		tokens:         tokens,
		contextManager: contextManager,
		logger:         logger,
	}
}

type registerRequest struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Metadata  map[string]any `json:"metadata"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	User        model.User `json:"user"`
}

type verifyResponse struct {
	Valid bool       `json:"valid"`
	User  model.User `json:"user"`
}

type profilePatchRequest struct {
	Email     *string        `json:"email"`
	Password  *string        `json:"password"`
	FirstName *string        `json:"first_name"`
	LastName  *string        `json:"last_name"`
	Metadata  map[string]any `json:"metadata"`
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), model.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Metadata:  req.Metadata,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, loginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
		User:        result.User,
	})
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
		User:        result.User,
	})
}

// Verify answers for any request that passed authentication. The
// middleware already resolved the token to a live user.
func (h *Auth) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := h.contextManager.User(r.Context())
	if !ok {
		handleError(w, model.ErrUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, User: user})
}

func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := h.contextManager.Token(r.Context())
	if !ok {
		handleError(w, model.ErrUnauthorized)
		return
	}

	h.tokens.Revoke(r.Context(), token)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Auth) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.contextManager.User(r.Context())
	if !ok {
		handleError(w, model.ErrUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.UserID(r.Context())
	if !ok {
		handleError(w, model.ErrUnauthorized)
		return
	}

	var req profilePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), userID, model.ProfilePatch{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Metadata:  req.Metadata,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeactivateUser soft-disables the account. Callers can only act on
// themselves.
func (h *Auth) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := h.subjectFromPath(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.service.Deactivate(r.Context(), targetID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser permanently removes the account. Callers can only act on
// themselves. Recorded events survive deletion.
func (h *Auth) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := h.subjectFromPath(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), targetID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// subjectFromPath parses the {id} path variable and rejects requests
// whose token subject does not match it.
func (h *Auth) subjectFromPath(r *http.Request) (uuid.UUID, error) {
	targetID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, model.ErrValidation
	}

	callerID, ok := h.contextManager.UserID(r.Context())
	if !ok || callerID != targetID {
		return uuid.Nil, model.ErrUnauthorized
	}

	return targetID, nil
}
