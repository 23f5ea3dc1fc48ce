package model

import "time"

// Location represents a physical venue that owns a fixed set of
// numbered seats. Events are scheduled at exactly one location and may
// only hand out seats belonging to it. This struct corresponds to a row
// in the `locations` table.
type Location struct {
	ID        uint64    // locations.id
	Name      string    // locations.name
	CreatedAt time.Time // locations.created_at
	UpdatedAt time.Time // locations.updated_at
}
