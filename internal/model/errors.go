package model

import "errors"

var (
	// ErrValidation marks malformed input. Never retried automatically.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound marks a missing row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is the authoritative signal from the store's
	// uniqueness constraint on registration or profile update.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrWeakPassword marks a password below the configured policy.
	ErrWeakPassword = errors.New("password does not meet minimum requirements")
	// ErrInvalidCredentials is deliberately generic: it never distinguishes
	// an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized marks a missing, invalid or mismatched credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound marks a token whose subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrBatchTooLarge rejects a metric batch over the configured maximum.
	ErrBatchTooLarge = errors.New("metric batch exceeds maximum size")
	// ErrTimeout marks a store or cache call that exceeded its deadline.
	ErrTimeout = errors.New("dependency timed out")
	// ErrUnavailable marks an unreachable dependency.
	ErrUnavailable = errors.New("dependency unavailable")
	// ErrHashing marks a corrupted stored digest or invalid work factor.
	ErrHashing = errors.New("password hashing failed")
)
