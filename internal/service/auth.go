package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/model"
)

// Auth owns the credential lifecycle: registration, login, token
// verification, profile updates and account removal.
type Auth struct {
	userStore         model.UserStore
	hasher            model.PasswordHasher
	tokens            *TokenService
	passwordMinLength int
	logger            *logger.Logger
	now               func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokens *TokenService,
	passwordMinLength int,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:         userStore,
		hasher:            hasher,
		tokens:            tokens,
		passwordMinLength: passwordMinLength,
		logger:            logger,
		now:               time.Now,
	}
}

// LoginResult couples the issued token with the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      model.User
}

// Register creates a new account and logs it in, returning the created
// user with a freshly issued token.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (LoginResult, error) {
	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	email, err := normalizeEmail(params.Email)
	if err != nil {
		return LoginResult{}, err
	}

	if err := a.checkPasswordPolicy(params.Password); err != nil {
		return LoginResult{}, err
	}

	digest, err := a.hasher.Hash(params.Password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"email", email,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now()
	user := model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: digest,
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		Active:       true,
		Metadata:     params.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := a.userStore.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			a.logger.Info("Auth service: email already registered",
				"email", email)
			return LoginResult{}, err
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := a.tokens.Issue(ctx, created.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", created.ID,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user registered successfully",
		"user_id", created.ID,
		"email", email)

	return LoginResult{
		Token:     token,
		ExpiresIn: a.tokens.manager.TTL(),
		User:      created,
	}, nil
}

func (a *Auth) Login(ctx context.Context, email, password string) (LoginResult, error) {
	a.logger.Debug("Auth service: starting user login",
		"email", email)

	normalized, err := normalizeEmail(email)
	if err != nil {
		return LoginResult{}, err
	}

	user, err := a.userStore.GetByEmail(ctx, normalized)
	if errors.Is(err, model.ErrNotFound) {
		return LoginResult{}, model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", normalized,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	match, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		a.logger.Error("Auth service: failed to verify password",
			"email", normalized,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match || !user.Active {
		return LoginResult{}, model.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(ctx, user.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"user_id", user.ID,
			"error", err.Error())
		return LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user logged in successfully",
		"user_id", user.ID)

	return LoginResult{
		Token:     token,
		ExpiresIn: a.tokens.manager.TTL(),
		User:      user,
	}, nil
}

// VerifyToken resolves a token to its live subject. Tokens whose subject
// no longer exists or has been deactivated are rejected.
func (a *Auth) VerifyToken(ctx context.Context, token string) (model.User, error) {
	userID, err := a.tokens.GetUserID(ctx, token)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if !user.Active {
		return model.User{}, model.ErrUnauthorized
	}

	return user, nil
}

func (a *Auth) UpdateProfile(ctx context.Context, userID uuid.UUID, patch model.ProfilePatch) (model.User, error) {
	a.logger.Debug("Auth service: updating user profile",
		"user_id", userID)

	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return model.User{}, err
		}
		user.Email = email
	}
	if patch.Password != nil {
		if err := a.checkPasswordPolicy(*patch.Password); err != nil {
			return model.User{}, err
		}
		digest, err := a.hasher.Hash(*patch.Password)
		if err != nil {
			return model.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = digest
	}
	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Metadata != nil {
		user.Metadata = patch.Metadata
	}
	user.UpdatedAt = a.now()

	updated, err := a.userStore.Update(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			return model.User{}, err
		}
		a.logger.Error("Auth service: failed to update user",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	a.logger.Info("Auth service: user profile updated",
		"user_id", userID)

	return updated, nil
}

// Deactivate soft-disables the account. Existing tokens stop verifying
// because VerifyToken rejects inactive subjects.
func (a *Auth) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user by id: %w", err)
	}

	user.Active = false
	user.UpdatedAt = a.now()

	if _, err := a.userStore.Update(ctx, user); err != nil {
		a.logger.Error("Auth service: failed to deactivate user",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	a.logger.Info("Auth service: user deactivated",
		"user_id", userID)

	return nil
}

// DeleteUser removes the account row. Recorded events survive deletion
// and keep their user attribution.
func (a *Auth) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	err := a.userStore.Delete(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrUserNotFound
	}
	if err != nil {
		a.logger.Error("Auth service: failed to delete user",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to delete user: %w", err)
	}

	a.logger.Info("Auth service: user deleted",
		"user_id", userID)

	return nil
}

func (a *Auth) checkPasswordPolicy(password string) error {
	if len(password) < a.passwordMinLength {
		return fmt.Errorf("%w: minimum length is %d", model.ErrWeakPassword, a.passwordMinLength)
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(normalized, "@")
	if at < 1 || at == len(normalized)-1 {
		return "", fmt.Errorf("%w: malformed email", model.ErrValidation)
	}
	return normalized, nil
}
