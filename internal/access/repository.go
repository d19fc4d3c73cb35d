package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/database"
)

// Repository persists access requests.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	Get(ctx context.Context, id int64, acceptedBy string) (*Request, error)
	Resolve(ctx context.Context, id int64, acceptedBy string, status Status) error
	ListByAcceptor(ctx context.Context, acceptedBy string) ([]Request, error)
}

// SQLRepository implements Repository on the access table.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository creates a new SQL-backed access repository.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts a pending request and sets its ID and status.
func (r *SQLRepository) Create(ctx context.Context, req *Request) error {
	const query = `INSERT INTO access (username_req, username_acc, status)
		VALUES (?, ?, ?) RETURNING idaccess`
	id, err := r.db.InsertReturningID(ctx, query, req.RequestedBy, req.AcceptedBy, string(StatusPending))
	if err != nil {
		return fmt.Errorf("inserting access request: %w", err)
	}
	req.ID = id
	req.Status = StatusPending
	return nil
}

// Get returns the request with id addressed to acceptedBy.
// Returns ErrNotFound when no such row exists.
func (r *SQLRepository) Get(ctx context.Context, id int64, acceptedBy string) (*Request, error) {
	const query = `SELECT idaccess, username_req, username_acc, status
		FROM access WHERE idaccess = ? AND username_acc = ?`
	var req Request
	var status string
	err := r.db.QueryRowContext(ctx, query, id, acceptedBy).
		Scan(&req.ID, &req.RequestedBy, &req.AcceptedBy, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting access request %d: %w", id, err)
	}
	req.Status = Status(status)
	return &req, nil
}

// Resolve moves a pending request to status. The update only applies while
// the row is still pending, so of two racing resolutions exactly one wins;
// the loser gets ErrAlreadyResolved.
func (r *SQLRepository) Resolve(ctx context.Context, id int64, acceptedBy string, status Status) error {
	const query = `UPDATE access SET status = ?
		WHERE idaccess = ? AND username_acc = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, string(status), id, acceptedBy, string(StatusPending))
	if err != nil {
		return fmt.Errorf("updating access request %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// ListByAcceptor returns every request addressed to acceptedBy.
func (r *SQLRepository) ListByAcceptor(ctx context.Context, acceptedBy string) ([]Request, error) {
	const query = `SELECT idaccess, username_req, username_acc, status
		FROM access WHERE username_acc = ? ORDER BY idaccess`
	rows, err := r.db.QueryContext(ctx, query, acceptedBy)
	if err != nil {
		return nil, fmt.Errorf("listing access requests: %w", err)
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		var req Request
		var status string
		if err := rows.Scan(&req.ID, &req.RequestedBy, &req.AcceptedBy, &status); err != nil {
			return nil, fmt.Errorf("scanning access request: %w", err)
		}
		req.Status = Status(status)
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating access requests: %w", err)
	}
	return requests, nil
}
