package repository

import (
	"context"
	"database/sql"

	"github.com/ekarslan/event-seat-reservation/internal/model"
)

const eventColumns = "id, manager_id, location_id, name, starts_at, ends_at, booking_starts_at, booking_deadline, created_at, updated_at"

// EventRepo provides CRUD access to events.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// Create inserts an event and returns it with its assigned ID. Window
// ordering is validated by the service before this is called.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO events (manager_id, location_id, name, starts_at, ends_at, booking_starts_at, booking_deadline) VALUES (?,?,?,?,?,?,?)",
		e.ManagerID, e.LocationID, e.Name, e.StartsAt, e.EndsAt, e.BookingStartsAt, e.BookingDeadline)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a single event.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id=?", id)
	return scanEvent(row)
}

// List returns all events ordered by start time.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+eventColumns+" FROM events ORDER BY starts_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListByManager returns the events owned by a manager.
func (r *EventRepo) ListByManager(ctx context.Context, managerID uint64) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE manager_id=? ORDER BY starts_at", managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// Update rewrites an event's mutable fields and returns the fresh row.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) (*model.Event, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE events SET location_id=?, name=?, starts_at=?, ends_at=?, booking_starts_at=?, booking_deadline=? WHERE id=?",
		e.LocationID, e.Name, e.StartsAt, e.EndsAt, e.BookingStartsAt, e.BookingDeadline, e.ID)
	if err != nil {
		return nil, err
	}
	if _, err := res.RowsAffected(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, e.ID)
}

// Delete removes an event. Its reservations and allowances go with it
// via ON DELETE CASCADE.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

func scanEvent(row *sql.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.ManagerID, &e.LocationID, &e.Name,
		&e.StartsAt, &e.EndsAt, &e.BookingStartsAt, &e.BookingDeadline,
		&e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]model.Event, error) {
	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.ManagerID, &e.LocationID, &e.Name,
			&e.StartsAt, &e.EndsAt, &e.BookingStartsAt, &e.BookingDeadline,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
