package apperrors

import (
	"errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")

	ErrPostNotFound = errors.New("post not found")

	ErrSessionNotFound    = errors.New("session not found")
	ErrResetTokenNotFound = errors.New("reset token not found or expired")

	ErrNotAuthenticated = errors.New("not authenticated")
)
