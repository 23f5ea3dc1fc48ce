package model

import "time"

// Seat describes a physical seat in a location. The seat number is
// unique within its location and is what exports and seat maps sort by;
// the row label is display metadata only and never drives allocation.
//
// Fields:
//  ID         – primary key identifier.
//  LocationID – location to which this seat belongs.
//  SeatNumber – number of the seat, unique per location.
//  RowLabel   – letter or string designating the row (display only).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
	ID         uint64    // seats.id
	LocationID uint64    // seats.location_id
	SeatNumber uint32    // seats.seat_number
	RowLabel   string    // seats.row_label
	CreatedAt  time.Time // seats.created_at
	UpdatedAt  time.Time // seats.updated_at
}
