package auth

import (
	"context"
	"fmt"
)

// Service implements registration and login on top of a repository and a hasher.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewService creates an account service.
func NewService(users UserRepository, hasher PasswordHasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// Register hashes password and stores a new account.
//
// Returns ErrMissingCredentials when either field is empty and
// ErrUsernameExists (wrapped) when the username is taken.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.users.Create(ctx, &User{Username: username, PasswordHash: digest})
}

// Login checks a username and password.
//
// Returns ErrMissingCredentials, ErrUserNotFound or ErrInvalidPassword for
// the corresponding caller mistakes; any other error is a store or digest
// failure.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return ErrInvalidPassword
	}
	return nil
}

// Usernames lists every registered username.
func (s *Service) Usernames(ctx context.Context) ([]string, error) {
	return s.users.ListUsernames(ctx)
}

// Exists reports whether username is registered.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	return s.users.Exists(ctx, username)
}
