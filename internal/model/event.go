package model

import "time"

// Event represents a time-boxed happening at a location for which seats
// can be reserved. BookingStartsAt and BookingDeadline bound the window
// in which end users may reserve; managers are not bound by the window.
// The ordering booking_starts_at < booking_deadline < ends_at is
// enforced when events are created or updated.
//
// Deleting an event cascades to its reservations and allowances.
//
// Fields:
//  ID              – primary key identifier.
//  ManagerID       – user who owns and administers the event.
//  LocationID      – venue whose seats the event hands out.
//  Name            – display name of the event.
//  StartsAt        – when the event begins.
//  EndsAt          – when the event ends.
//  BookingStartsAt – earliest moment users may reserve.
//  BookingDeadline – latest moment users may reserve.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Event struct {
	ID              uint64    // events.id
	ManagerID       uint64    // events.manager_id
	LocationID      uint64    // events.location_id
	Name            string    // events.name
	StartsAt        time.Time // events.starts_at
	EndsAt          time.Time // events.ends_at
	BookingStartsAt time.Time // events.booking_starts_at
	BookingDeadline time.Time // events.booking_deadline
	CreatedAt       time.Time // events.created_at
	UpdatedAt       time.Time // events.updated_at
}

// BookingOpenAt reports whether the event accepts user reservations at
// the given instant.
func (e Event) BookingOpenAt(t time.Time) bool {
	return !t.Before(e.BookingStartsAt) && !t.After(e.BookingDeadline)
}
