package service

import (
	"errors"

	"github.com/mkovalev/accounts-api/internal/repo"
)

// Closed error set for the auth flows. Callers branch with errors.Is against
// these instead of inspecting error strings or types.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")

	// ErrAccountInactive is logged for diagnostics but never returned to the
	// caller: inactive accounts answer with ErrInvalidCredentials so login
	// responses cannot be used to enumerate account state.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrUnavailable marks storage timeouts and connection failures as
	// retryable.
	ErrUnavailable = repo.ErrUnavailable
)
