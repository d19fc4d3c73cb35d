package farm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/database"
)

// Repository defines the interface for farm and pond persistence.
type Repository interface {
	CreateFarm(ctx context.Context, farm *Farm) error
	GetFarm(ctx context.Context, id int64) (*Farm, error)
	ListFarmsByUsername(ctx context.Context, username string) ([]Farm, error)
	UpdateFarmName(ctx context.Context, id int64, name string) error
	DeleteFarm(ctx context.Context, id int64) error
	DeleteFarmsByName(ctx context.Context, name string) (int64, error)

	CreatePond(ctx context.Context, pond *Pond) error
	ListPonds(ctx context.Context, farmID int64) ([]Pond, error)
}

// SQLRepository implements Repository on the akuaponik and kolam tables.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository creates a new SQL-backed farm repository.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// CreateFarm inserts a farm and sets its generated ID.
func (r *SQLRepository) CreateFarm(ctx context.Context, farm *Farm) error {
	const query = `INSERT INTO akuaponik (nama_farm, username) VALUES (?, ?) RETURNING idakuaponik`
	id, err := r.db.InsertReturningID(ctx, query, farm.Name, farm.Username)
	if err != nil {
		return fmt.Errorf("inserting farm %q: %w", farm.Name, err)
	}
	farm.ID = id
	return nil
}

// GetFarm returns a single farm by ID.
func (r *SQLRepository) GetFarm(ctx context.Context, id int64) (*Farm, error) {
	const query = `SELECT idakuaponik, nama_farm, username FROM akuaponik WHERE idakuaponik = ?`
	var f Farm
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &f.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFarmNotFound
		}
		return nil, fmt.Errorf("getting farm %d: %w", id, err)
	}
	return &f, nil
}

// ListFarmsByUsername returns the farms owned by username.
func (r *SQLRepository) ListFarmsByUsername(ctx context.Context, username string) ([]Farm, error) {
	const query = `SELECT idakuaponik, nama_farm, username FROM akuaponik
		WHERE username = ? ORDER BY idakuaponik`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("listing farms for %q: %w", username, err)
	}
	defer rows.Close()

	farms := []Farm{}
	for rows.Next() {
		var f Farm
		if err := rows.Scan(&f.ID, &f.Name, &f.Username); err != nil {
			return nil, fmt.Errorf("scanning farm: %w", err)
		}
		farms = append(farms, f)
	}
	return farms, rows.Err()
}

// UpdateFarmName renames a farm.
func (r *SQLRepository) UpdateFarmName(ctx context.Context, id int64, name string) error {
	const query = `UPDATE akuaponik SET nama_farm = ? WHERE idakuaponik = ?`
	res, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("updating farm %d: %w", id, err)
	}
	return requireAffected(res)
}

// DeleteFarm deletes one farm by ID. Its ponds are left in place.
func (r *SQLRepository) DeleteFarm(ctx context.Context, id int64) error {
	const query = `DELETE FROM akuaponik WHERE idakuaponik = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting farm %d: %w", id, err)
	}
	return requireAffected(res)
}

// DeleteFarmsByName deletes every farm called name together with their
// ponds, in one transaction. Either both deletes commit or neither does.
// Returns the number of farms deleted, or ErrFarmNotFound if none matched.
func (r *SQLRepository) DeleteFarmsByName(ctx context.Context, name string) (int64, error) {
	var deleted int64

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		const deletePonds = `DELETE FROM kolam WHERE idakuaponik IN
			(SELECT idakuaponik FROM akuaponik WHERE nama_farm = ?)`
		if _, err := tx.ExecContext(ctx, deletePonds, name); err != nil {
			return fmt.Errorf("deleting ponds of farm %q: %w", name, err)
		}

		const deleteFarms = `DELETE FROM akuaponik WHERE nama_farm = ?`
		res, err := tx.ExecContext(ctx, deleteFarms, name)
		if err != nil {
			return fmt.Errorf("deleting farm %q: %w", name, err)
		}

		deleted, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reading rows affected: %w", err)
		}
		if deleted == 0 {
			return ErrFarmNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// CreatePond inserts a pond and sets its generated ID.
func (r *SQLRepository) CreatePond(ctx context.Context, pond *Pond) error {
	const query = `INSERT INTO kolam (idakuaponik, nama_kolam) VALUES (?, ?) RETURNING idkolam`
	id, err := r.db.InsertReturningID(ctx, query, pond.FarmID, pond.Name)
	if err != nil {
		return fmt.Errorf("inserting pond %q: %w", pond.Name, err)
	}
	pond.ID = id
	return nil
}

// ListPonds returns the ponds of a farm.
func (r *SQLRepository) ListPonds(ctx context.Context, farmID int64) ([]Pond, error) {
	const query = `SELECT idkolam, idakuaponik, nama_kolam FROM kolam
		WHERE idakuaponik = ? ORDER BY idkolam`
	rows, err := r.db.QueryContext(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("listing ponds of farm %d: %w", farmID, err)
	}
	defer rows.Close()

	ponds := []Pond{}
	for rows.Next() {
		var p Pond
		if err := rows.Scan(&p.ID, &p.FarmID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning pond: %w", err)
		}
		ponds = append(ponds, p)
	}
	return ponds, rows.Err()
}

// requireAffected maps a zero-row UPDATE or DELETE to ErrFarmNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrFarmNotFound
	}
	return nil
}
