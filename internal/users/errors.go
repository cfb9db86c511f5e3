package users

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrGuestDisabled   = errors.New("guest sign-in is only available in demo mode")
	ErrMissingID       = errors.New("user id is required")
	ErrMissingEmail    = errors.New("email is required")
	ErrMissingName     = errors.New("name is required")
	ErrInvalidRole     = errors.New("role must be admin or staff")
	ErrUnauthenticated = errors.New("not signed in")
)
