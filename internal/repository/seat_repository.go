package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ekarslan/event-seat-reservation/internal/model"
)

// SeatRepo provides access to the seats of a location.
type SeatRepo struct{ DB *sql.DB }

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{DB: db} }

// BulkCreate inserts numbered seats for a location: `count` seats per
// row, `rows` rows labelled A, B, C... Seat numbers run 1..rows*count
// across the whole location. Everything goes in as one multi-row
// INSERT inside a transaction so a venue is never half-seeded.
func (r *SeatRepo) BulkCreate(ctx context.Context, locationID uint64, rowCount, seatsPerRow int) error {
	if rowCount <= 0 || seatsPerRow <= 0 {
		return fmt.Errorf("invalid seat layout %dx%d", rowCount, seatsPerRow)
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		placeholders []string
		args         []any
	)
	num := 0
	for row := 0; row < rowCount; row++ {
		label := rowLabel(row)
		for s := 0; s < seatsPerRow; s++ {
			num++
			placeholders = append(placeholders, "(?,?,?)")
			args = append(args, locationID, num, label)
		}
	}
	query := "INSERT INTO seats (location_id, seat_number, row_label) VALUES " +
		strings.Join(placeholders, ",")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("location %d already has seats in this range", locationID)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// rowLabel converts a zero-based row index to a spreadsheet style
// label: A..Z, then AA, AB and so on.
func rowLabel(i int) string {
	label := ""
	for {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
		if i < 0 {
			return label
		}
	}
}

// GetByID fetches a single seat.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	var s model.Seat
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, location_id, seat_number, row_label, created_at, updated_at FROM seats WHERE id=?", id).
		Scan(&s.ID, &s.LocationID, &s.SeatNumber, &s.RowLabel, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByLocation returns every seat of a location in seat number order.
func (r *SeatRepo) ListByLocation(ctx context.Context, locationID uint64) ([]model.Seat, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, location_id, seat_number, row_label, created_at, updated_at FROM seats WHERE location_id=? ORDER BY seat_number",
		locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.LocationID, &s.SeatNumber, &s.RowLabel, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
