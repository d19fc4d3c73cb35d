package actuator

import (
	"context"
	"fmt"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/database"
)

// Repository persists actuator events.
type Repository interface {
	Insert(ctx context.Context, e *Event) error
	ListByPond(ctx context.Context, kind Kind, pondID int64) ([]Event, error)
}

// SQLRepository implements Repository on the solenoid and aerator tables.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository creates a new SQL-backed actuator repository.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Insert stores an event and sets its generated ID.
func (r *SQLRepository) Insert(ctx context.Context, e *Event) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}

	// Table and column names come from Kind, never from request input.
	query := fmt.Sprintf(`INSERT INTO %s (idkolam, issued_at, state) VALUES (?, ?, ?) RETURNING %s`,
		e.Kind.table(), e.Kind.IDColumn())
	id, err := r.db.InsertReturningID(ctx, query, e.PondID, e.Date, e.State)
	if err != nil {
		return fmt.Errorf("inserting %s event for pond %d: %w", e.Kind, e.PondID, err)
	}
	e.ID = id
	return nil
}

// ListByPond returns the events of kind for a pond, oldest first.
func (r *SQLRepository) ListByPond(ctx context.Context, kind Kind, pondID int64) ([]Event, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	query := fmt.Sprintf(`SELECT %s, idkolam, issued_at, state FROM %s WHERE idkolam = ? ORDER BY %s`,
		kind.IDColumn(), kind.table(), kind.IDColumn())
	rows, err := r.db.QueryContext(ctx, query, pondID)
	if err != nil {
		return nil, fmt.Errorf("listing %s events for pond %d: %w", kind, pondID, err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e := Event{Kind: kind}
		if err := rows.Scan(&e.ID, &e.PondID, &e.Date, &e.State); err != nil {
			return nil, fmt.Errorf("scanning %s event: %w", kind, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s events: %w", kind, err)
	}
	return events, nil
}
