package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ekarslan/event-seat-reservation/internal/model"
)

// LocationRepo provides CRUD access to venues.
type LocationRepo struct{ DB *sql.DB }

func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{DB: db} }

// Create inserts a location and returns it with its assigned ID.
func (r *LocationRepo) Create(ctx context.Context, name string) (*model.Location, error) {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO locations (name) VALUES (?)", name)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, errors.New("location name already exists")
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a single location.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (*model.Location, error) {
	var l model.Location
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM locations WHERE id=?", id).
		Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// List returns all locations ordered by name.
func (r *LocationRepo) List(ctx context.Context) ([]model.Location, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM locations ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
