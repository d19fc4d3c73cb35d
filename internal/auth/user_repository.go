package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/database"
)

// User is a gateway account.
type User struct {
	Username     string
	PasswordHash string
}

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListUsernames(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// SQLUserRepository implements UserRepository on the users table.
type SQLUserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new SQL-backed user repository.
func NewUserRepository(db *database.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// Create inserts a new account. A taken username returns ErrUsernameExists
// wrapping the driver error.
func (r *SQLUserRepository) Create(ctx context.Context, user *User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (idusername, password) VALUES (?, ?)",
		user.Username, user.PasswordHash,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", ErrUsernameExists, err)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetByUsername retrieves an account by username.
func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		"SELECT idusername, password FROM users WHERE idusername = ?", username,
	).Scan(&u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// ListUsernames returns every username, sorted.
func (r *SQLUserRepository) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT idusername FROM users ORDER BY idusername")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning username: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return names, nil
}

// Exists reports whether an account with the username exists.
func (r *SQLUserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE idusername = ?", username,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking user: %w", err)
	}
	return true, nil
}
