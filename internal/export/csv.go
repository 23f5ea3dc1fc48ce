// Package export renders reservation snapshots for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/ekarslan/event-seat-reservation/internal/model"
)

// csvHeader is the first row of every reservation export.
var csvHeader = []string{
	"seat_number", "row_label", "status", "user_email",
	"confirmation_code", "reservation_id", "created_at",
}

// WriteReservationsCSV writes one snapshot of an event's reservations
// as CSV. Rows must already be in seat number order; the writer does
// not reorder them.
func WriteReservationsCSV(w io.Writer, rows []model.ReservationDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatUint(uint64(r.SeatNumber), 10),
			r.RowLabel,
			r.Status,
			r.UserEmail,
			r.ConfirmationCode,
			strconv.FormatUint(r.ID, 10),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
