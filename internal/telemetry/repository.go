package telemetry

import (
	"context"
	"fmt"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/database"
)

// Repository persists and reads sensor readings.
type Repository interface {
	Insert(ctx context.Context, r *Reading) error
	ListByPond(ctx context.Context, pondID int64) ([]Reading, error)
}

// SQLRepository implements Repository on the sensor table.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository creates a new SQL-backed reading repository.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Insert stores one reading and sets its generated ID.
func (r *SQLRepository) Insert(ctx context.Context, reading *Reading) error {
	const query = `INSERT INTO sensor (idkolam, jenis_sensor, value, recorded_at)
		VALUES (?, ?, ?, ?) RETURNING idsensor`
	id, err := r.db.InsertReturningID(ctx, query,
		reading.PondID, reading.SensorType, reading.Value, reading.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting reading for pond %d: %w", reading.PondID, err)
	}
	reading.ID = id
	return nil
}

// ListByPond returns every reading for a pond, oldest first.
func (r *SQLRepository) ListByPond(ctx context.Context, pondID int64) ([]Reading, error) {
	const query = `SELECT idsensor, idkolam, jenis_sensor, value, recorded_at
		FROM sensor WHERE idkolam = ? ORDER BY recorded_at, idsensor`
	rows, err := r.db.QueryContext(ctx, query, pondID)
	if err != nil {
		return nil, fmt.Errorf("listing readings for pond %d: %w", pondID, err)
	}
	defer rows.Close()

	readings := []Reading{}
	for rows.Next() {
		var rd Reading
		if err := rows.Scan(&rd.ID, &rd.PondID, &rd.SensorType, &rd.Value, &rd.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		readings = append(readings, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}
