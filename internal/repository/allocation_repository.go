package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ekarslan/event-seat-reservation/internal/model"
)

// AllocationRepo is the storage backend of the allocation engine. Every
// method honors a transaction carried in the context (see WithTx); the
// engine wraps each reserve, block and release in one, so a batch either
// lands whole or not at all.
type AllocationRepo struct{ DB *sql.DB }

func NewAllocationRepo(db *sql.DB) *AllocationRepo { return &AllocationRepo{DB: db} }

// WithTx runs fn inside a database transaction. The transaction is
// committed when fn returns nil and rolled back otherwise. Nested calls
// join the outer transaction.
func (r *AllocationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.DB, fn)
}

// EventByID fetches an event, honoring any ambient transaction.
func (r *AllocationRepo) EventByID(ctx context.Context, id uint64) (*model.Event, error) {
	row := runner(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id=?", id)
	return scanEvent(row)
}

// UserByID fetches a user, honoring any ambient transaction.
func (r *AllocationRepo) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := runner(ctx, r.DB).QueryRowContext(ctx,
		"SELECT id, email, password_hash, role, is_active, created_at, updated_at FROM users WHERE id=?", id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SeatsByIDs resolves seat IDs against one location. Any ID that does
// not exist, or belongs to another location, yields ErrSeatNotFound.
func (r *AllocationRepo) SeatsByIDs(ctx context.Context, locationID uint64, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, locationID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	query := "SELECT id, location_id, seat_number, row_label, created_at, updated_at FROM seats WHERE location_id=? AND id IN (" +
		placeholders(len(seatIDs)) + ")"
	rows, err := runner(ctx, r.DB).QueryContext(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) != len(seatIDs) {
		return nil, ErrSeatNotFound
	}
	return out, nil
}

// InsertReservation writes one reservation row. The unique
// (event_id, seat_id) key is the sole authority on seat conflicts; a
// duplicate-key error comes back as ErrSeatTaken.
func (r *AllocationRepo) InsertReservation(ctx context.Context, res *model.Reservation) (uint64, error) {
	result, err := runner(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO reservations (user_id, event_id, seat_id, status, confirmation_code) VALUES (?,?,?,?,?)",
		res.UserID, res.EventID, res.SeatID, res.Status, res.ConfirmationCode)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrSeatTaken
		}
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ReservationByID fetches one reservation, honoring any ambient
// transaction. Inside a release transaction the row is locked with
// FOR UPDATE so two concurrent releases of the same ID serialize.
func (r *AllocationRepo) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	query := "SELECT id, user_id, event_id, seat_id, status, confirmation_code, created_at FROM reservations WHERE id=?"
	if txFromContext(ctx) != nil {
		query += " FOR UPDATE"
	}
	var res model.Reservation
	err := runner(ctx, r.DB).QueryRowContext(ctx, query, id).
		Scan(&res.ID, &res.UserID, &res.EventID, &res.SeatID, &res.Status, &res.ConfirmationCode, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteReservation removes one reservation row, freeing its seat.
func (r *AllocationRepo) DeleteReservation(ctx context.Context, id uint64) error {
	result, err := runner(ctx, r.DB).ExecContext(ctx, "DELETE FROM reservations WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ConsumeAllowance decrements the ledger by one, but only while the
// count is positive. Zero rows affected means the quota is exhausted or
// was never granted; either way the caller gets ErrNoAllowance and the
// count is never driven below zero.
func (r *AllocationRepo) ConsumeAllowance(ctx context.Context, userID, eventID uint64) error {
	result, err := runner(ctx, r.DB).ExecContext(ctx,
		"UPDATE event_user_allowances SET reservations_allowed_count = reservations_allowed_count - 1 WHERE user_id=? AND event_id=? AND reservations_allowed_count > 0",
		userID, eventID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoAllowance
	}
	return nil
}

// RestoreAllowance hands one unit back after a release. A missing row
// means the grant, or the whole event, is gone; restoring is then a
// silent no-op rather than an error.
func (r *AllocationRepo) RestoreAllowance(ctx context.Context, userID, eventID uint64) error {
	_, err := runner(ctx, r.DB).ExecContext(ctx,
		"UPDATE event_user_allowances SET reservations_allowed_count = reservations_allowed_count + 1 WHERE user_id=? AND event_id=?",
		userID, eventID)
	return err
}

// SetAllowance creates or overwrites the grant for a (user, event)
// pair.
func (r *AllocationRepo) SetAllowance(ctx context.Context, userID, eventID uint64, count uint32) error {
	_, err := runner(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO event_user_allowances (user_id, event_id, reservations_allowed_count) VALUES (?,?,?) ON DUPLICATE KEY UPDATE reservations_allowed_count=VALUES(reservations_allowed_count)",
		userID, eventID, count)
	return err
}

// AllowanceCount returns the remaining quota, zero when no grant
// exists.
func (r *AllocationRepo) AllowanceCount(ctx context.Context, userID, eventID uint64) (uint32, error) {
	var count uint32
	err := runner(ctx, r.DB).QueryRowContext(ctx,
		"SELECT reservations_allowed_count FROM event_user_allowances WHERE user_id=? AND event_id=?",
		userID, eventID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

// HeldSeatIDs returns which of the given seats already carry a
// reservation for the event. The engine uses it to report every
// colliding seat of a batch up front; the unique key remains the
// authority if a race sneaks in between this read and the insert.
func (r *AllocationRepo) HeldSeatIDs(ctx context.Context, eventID uint64, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, eventID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	query := "SELECT seat_id FROM reservations WHERE event_id=? AND seat_id IN (" +
		placeholders(len(seatIDs)) + ")"
	rows, err := runner(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ReservationsByUser returns a user's reservations for one event, or
// for all events when eventID is zero, newest first.
func (r *AllocationRepo) ReservationsByUser(ctx context.Context, userID, eventID uint64) ([]model.ReservationDetail, error) {
	query := reservationDetailQuery + " WHERE r.user_id=?"
	args := []any{userID}
	if eventID != 0 {
		query += " AND r.event_id=?"
		args = append(args, eventID)
	}
	query += " ORDER BY r.created_at DESC, r.id DESC"
	return r.queryDetails(ctx, query, args...)
}

// ListByEventSorted returns every reservation of an event ordered by
// seat number. Exports depend on this ordering.
func (r *AllocationRepo) ListByEventSorted(ctx context.Context, eventID uint64) ([]model.ReservationDetail, error) {
	return r.queryDetails(ctx,
		reservationDetailQuery+" WHERE r.event_id=? ORDER BY s.seat_number", eventID)
}

const reservationDetailQuery = `SELECT r.id, r.user_id, r.event_id, r.seat_id, r.status, r.confirmation_code, r.created_at,
	s.seat_number, s.row_label, u.email
FROM reservations r
JOIN seats s ON s.id = r.seat_id
JOIN users u ON u.id = r.user_id`

func (r *AllocationRepo) queryDetails(ctx context.Context, query string, args ...any) ([]model.ReservationDetail, error) {
	rows, err := runner(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReservationDetail
	for rows.Next() {
		var d model.ReservationDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.EventID, &d.SeatID, &d.Status, &d.ConfirmationCode, &d.CreatedAt,
			&d.SeatNumber, &d.RowLabel, &d.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// placeholders returns n comma separated "?" marks.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
