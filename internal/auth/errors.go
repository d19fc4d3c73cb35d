package auth

import "errors"

var (
	// ErrMissingCredentials is returned when username or password is empty.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrUserNotFound is returned when no account has the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword is returned when the password does not match the stored digest.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUsernameExists is returned when registering a username that is taken.
	ErrUsernameExists = errors.New("username already exists")

	// ErrMalformedDigest is returned when a stored digest cannot be parsed.
	ErrMalformedDigest = errors.New("malformed password digest")
)
