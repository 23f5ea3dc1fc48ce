package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: event
// listings and seat availability maps. These routes sit behind the
// Redis response cache.
type PublicHandler struct {
	Events *repository.EventRepo
	Seats  *repository.SeatRepo
	Allocs *repository.AllocationRepo
}

func NewPublicHandler(e *repository.EventRepo, s *repository.SeatRepo, a *repository.AllocationRepo) *PublicHandler {
	return &PublicHandler{Events: e, Seats: s, Allocs: a}
}

// ListEvents returns all events ordered by start time.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

type seatMapEntry struct {
	SeatID     uint64 `json:"seat_id"`
	SeatNumber uint32 `json:"seat_number"`
	RowLabel   string `json:"row_label"`
	Status     string `json:"status"` // FREE, RESERVED or BLOCKED
}

// SeatMap renders the availability of every seat of an event's
// location, in seat number order. Holder identities are never exposed
// here; only the hold status is public.
func (h *PublicHandler) SeatMap(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	seats, err := h.Seats.ListByLocation(ctx, ev.LocationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	held, err := h.Allocs.ListByEventSorted(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	statusBySeat := make(map[uint64]string, len(held))
	for _, r := range held {
		statusBySeat[r.SeatID] = r.Status
	}

	out := make([]seatMapEntry, 0, len(seats))
	for _, s := range seats {
		status := statusBySeat[s.ID]
		if status == "" {
			status = "FREE"
		}
		out = append(out, seatMapEntry{
			SeatID:     s.ID,
			SeatNumber: s.SeatNumber,
			RowLabel:   s.RowLabel,
			Status:     status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id":         eventID,
		"booking_open":     ev.BookingOpenAt(time.Now()),
		"booking_deadline": ev.BookingDeadline,
		"seats":            out,
	})
}
