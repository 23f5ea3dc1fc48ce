// Package repository contains the data access layer. This file defines
// sentinel errors that are shared across repositories so that higher
// layers can distinguish failure scenarios with errors.Is. NotFound
// values signal a bad reference that is never worth retrying, while
// ErrSeatTaken and ErrNoAllowance are business outcomes of the
// allocation engine that callers may react to.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// Lookup failures for the entities the allocation engine references.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrLocationNotFound    = errors.New("location not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

// ErrEmailExists is returned on registration with a taken address.
var ErrEmailExists = errors.New("email already exists")

// ErrSeatTaken is returned when inserting a reservation trips the
// unique (event_id, seat_id) constraint: some other hold already owns
// the seat. The constraint, not any prior SELECT, is the authority.
var ErrSeatTaken = errors.New("seat already held")

// ErrNoAllowance is returned when the ledger has no remaining quota for
// a (user, event) pair. The conditional decrement reports it without a
// separate read, so the count can never be observed below zero.
var ErrNoAllowance = errors.New("no reservation allowance left")

// isDuplicateEntry reports whether err is a MySQL duplicate-key error
// (1062). Used to map unique-constraint violations onto sentinels.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
