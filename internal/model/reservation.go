package model

import "time"

// Reservation statuses. A RESERVED hold was created on behalf of an end
// user and consumed one allowance unit; a BLOCKED hold was placed by a
// manager and never touches the ledger. There is no transition between
// the two: converting is modelled as release-then-create because the
// ledger effects differ.
const (
	StatusReserved = "RESERVED"
	StatusBlocked  = "BLOCKED"
)

// Reservation is a durable hold on one seat of one event. The pair
// (event_id, seat_id) is unique across all live reservations, enforced
// by a database constraint rather than application checks.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – user the seat is held for (the manager for BLOCKED).
//  EventID          – event the seat belongs to.
//  SeatID           – seat being held.
//  Status           – RESERVED or BLOCKED.
//  ConfirmationCode – opaque code handed to notification consumers.
//  CreatedAt        – creation timestamp.
type Reservation struct {
	ID               uint64    // reservations.id
	UserID           uint64    // reservations.user_id
	EventID          uint64    // reservations.event_id
	SeatID           uint64    // reservations.seat_id
	Status           string    // reservations.status
	ConfirmationCode string    // reservations.confirmation_code
	CreatedAt        time.Time // reservations.created_at
}

// ReservationDetail is a reservation joined with the seat and holder it
// refers to. Listings and exports use it so clients see seat numbers
// instead of raw seat IDs.
type ReservationDetail struct {
	Reservation
	SeatNumber uint32 // seats.seat_number
	RowLabel   string // seats.row_label
	UserEmail  string // users.email
}
