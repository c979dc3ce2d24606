package model

import "errors"

var (
	// ErrTokenExpired marks a well-formed token whose expiry has passed.
	// Distinct from ErrTokenInvalid so callers can tell "log in again"
	// from a tampered credential.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers signature mismatch, malformed structure or
	// a wrong signing algorithm.
	ErrTokenInvalid = errors.New("token invalid")
)
