package repository

import (
	"context"
	"strings"
)

// EventSearchQuery defines filters & pagination for the public event
// search.
type EventSearchQuery struct {
	Name       string
	Location   string
	TimeFilter string
	Page       int
	PageSize   int
}

type PublicEventRow struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	LocationID      uint64 `json:"location_id"`
	Location        string `json:"location"`
	StartsAt        string `json:"starts_at"`
	EndsAt          string `json:"ends_at"`
	BookingStartsAt string `json:"booking_starts_at"`
	BookingDeadline string `json:"booking_deadline"`
}

// Search returns events matching the query plus the total match count
// for pagination. TimeFilter is "upcoming" (default), "active" (still
// running) or "any".
func (r *EventRepo) Search(ctx context.Context, q EventSearchQuery) ([]PublicEventRow, int64, error) {
	where := []string{}
	args := []any{}

	switch strings.ToLower(q.TimeFilter) {
	case "any":
	case "active":
		where = append(where, "e.ends_at >= NOW()")
	default:
		where = append(where, "e.starts_at >= NOW()")
	}

	if q.Name != "" {
		where = append(where, "LOWER(e.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.Location != "" {
		where = append(where, "LOWER(l.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Location)+"%")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM events e
		JOIN locations l ON l.id = e.location_id
		WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			e.id,
			e.name,
			e.location_id,
			l.name AS location_name,
			DATE_FORMAT(e.starts_at,         '%Y-%m-%d %T') AS starts_at,
			DATE_FORMAT(e.ends_at,           '%Y-%m-%d %T') AS ends_at,
			DATE_FORMAT(e.booking_starts_at, '%Y-%m-%d %T') AS booking_starts_at,
			DATE_FORMAT(e.booking_deadline,  '%Y-%m-%d %T') AS booking_deadline
		FROM events e
		JOIN locations l ON l.id = e.location_id
		WHERE ` + cond + `
		ORDER BY e.starts_at ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicEventRow, 0, limit)
	for rows.Next() {
		var d PublicEventRow
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.LocationID,
			&d.Location,
			&d.StartsAt,
			&d.EndsAt,
			&d.BookingStartsAt,
			&d.BookingDeadline,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
