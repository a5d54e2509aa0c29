// Package common defines shared constants and sentinel errors used across
// client and server layers of BlockKeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Account errors.
	ErrUserExists        = errors.New("user exists already")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credential")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is reported for well-signed tokens past their expiry.
	// It matches ErrInvalidToken with errors.Is.
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrInvalidToken)
)
