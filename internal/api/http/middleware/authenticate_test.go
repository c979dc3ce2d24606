package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apicontext "github.com/omnistat/platform-server/internal/api/http/context"
	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/model"
)

type verifierMock struct {
	mock.Mock
}

func (m *verifierMock) VerifyToken(ctx context.Context, token string) (model.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.User), args.Error(1)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	verifier := &verifierMock{}
	ctxMgr := apicontext.NewManager()
	user := model.User{ID: uuid.New(), Email: "a@b.c", Active: true}

	verifier.On("VerifyToken", mock.Anything, "h.p.s").Return(user, nil)

	var gotUser model.User
	var gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = ctxMgr.User(r.Context())
		gotToken, _ = ctxMgr.Token(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	m := NewAuthenticate(verifier, ctxMgr, logger.New(0))
	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer h.p.s")
	rec := httptest.NewRecorder()

	m.Handle(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, gotUser.ID)
	assert.Equal(t, "h.p.s", gotToken)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	verifier := &verifierMock{}
	m := NewAuthenticate(verifier, apicontext.NewManager(), logger.New(0))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	rec := httptest.NewRecorder()
	m.Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/verify", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization token")
}

func TestAuthenticate_WrongScheme(t *testing.T) {
	verifier := &verifierMock{}
	m := NewAuthenticate(verifier, apicontext.NewManager(), logger.New(0))

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	m.Handle(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_RejectedToken(t *testing.T) {
	verifier := &verifierMock{}
	verifier.On("VerifyToken", mock.Anything, "bad.token.sig").
		Return(model.User{}, model.ErrUnauthorized)

	m := NewAuthenticate(verifier, apicontext.NewManager(), logger.New(0))

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer bad.token.sig")
	rec := httptest.NewRecorder()

	m.Handle(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid authorization token")
}
