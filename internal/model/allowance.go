package model

import "time"

// EventUserAllowance is one row of the quota ledger: how many more
// reservations a user may still make for an event. The pair
// (user_id, event_id) is unique and the count never goes below zero;
// both are guaranteed by the database, not by callers. Rows are created
// either by an explicit manager grant or implicitly on first use, and
// disappear with their event.
type EventUserAllowance struct {
	ID                       uint64    // event_user_allowances.id
	UserID                   uint64    // event_user_allowances.user_id
	EventID                  uint64    // event_user_allowances.event_id
	ReservationsAllowedCount uint32    // event_user_allowances.reservations_allowed_count
	CreatedAt                time.Time // event_user_allowances.created_at
	UpdatedAt                time.Time // event_user_allowances.updated_at
}
