// Package queue defines message payloads exchanged over the message
// broker, the fire-and-forget publisher, and the background consumer
// that turns reservation events into log lines.
package queue

// ReservationConfirmedEvent is published after a reservation commits.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID    uint64 `json:"reservation_id"`
	ConfirmationCode string `json:"confirmation_code"`
	UserID           uint64 `json:"user_id"`
	EventID          uint64 `json:"event_id"`
	EventName        string `json:"event_name"`
	SeatID           uint64 `json:"seat_id"`
	SeatNumber       uint32 `json:"seat_number"`
	RowLabel         string `json:"row_label"`
	Status           string `json:"status"`
	ManagerEmail     string `json:"manager_email"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// ReservationReleasedEvent is published after a reservation is removed.
// Remaining lists the reservations the user still holds for the event,
// so notice consumers can tell a partial release from a full one.
type ReservationReleasedEvent struct {
	ReservationID  uint64   `json:"reservation_id"`
	UserID         uint64   `json:"user_id"`
	EventID        uint64   `json:"event_id"`
	SeatID         uint64   `json:"seat_id"`
	Status         string   `json:"status"`
	RemainingCount int      `json:"remaining_count"`
	RemainingIDs   []uint64 `json:"remaining_ids"`
	ReleasedAt     string   `json:"released_at"`
}
