package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/export"
	"github.com/ekarslan/event-seat-reservation/internal/model"
	"github.com/ekarslan/event-seat-reservation/internal/service"
)

// ReservationAdminHandler is the manager-facing allocation surface:
// blocking seats, releasing arbitrary holds, listing and exporting an
// event's reservations.
type ReservationAdminHandler struct {
	Alloc *service.AllocationService
}

func NewReservationAdminHandler(alloc *service.AllocationService) *ReservationAdminHandler {
	return &ReservationAdminHandler{Alloc: alloc}
}

type seatBatchReq struct {
	SeatIDs []uint64 `json:"seat_ids"`
}

type reservationPart struct {
	ID               uint64 `json:"id"`
	SeatID           uint64 `json:"seat_id"`
	Status           string `json:"status"`
	ConfirmationCode string `json:"confirmation_code"`
}

// BlockSeats places BLOCKED holds on seats of the caller's event. No
// allowance is consumed; conflicting seats abort the whole batch.
func (h *ReservationAdminHandler) BlockSeats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req seatBatchReq
	if err := c.Bind(&req); err != nil || len(req.SeatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	created, err := h.Alloc.Block(ctx, uid, getRole(c), eventID, req.SeatIDs)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"event_id": eventID,
		"blocked":  toParts(created),
	})
}

type releaseReq struct {
	ReservationIDs []uint64 `json:"reservation_ids"`
}

// ReleaseReservations frees the given holds. Each ID is independent:
// vanished IDs are skipped, RESERVED holds hand their allowance back.
// On a mid-batch failure the response still names the holds that were
// already freed, since those releases stand.
func (h *ReservationAdminHandler) ReleaseReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req releaseReq
	if err := c.Bind(&req); err != nil || len(req.ReservationIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_ids required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	released, err := h.Alloc.Release(ctx, uid, getRole(c), req.ReservationIDs)
	if err != nil {
		status, body := allocationErrorBody(err)
		body["released"] = toParts(released)
		return c.JSON(status, body)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": toParts(released)})
}

// ListEventReservations returns every hold of the caller's event in
// seat number order.
func (h *ReservationAdminHandler) ListEventReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Alloc.EventReservations(ctx, uid, getRole(c), eventID)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": eventID, "reservations": rows})
}

// ExportEventReservations streams the same snapshot as CSV for
// download, one row per reservation in seat number order.
func (h *ReservationAdminHandler) ExportEventReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.Alloc.EventReservations(ctx, uid, getRole(c), eventID)
	if err != nil {
		return writeAllocationError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="event_%d_reservations.csv"`, eventID))
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteReservationsCSV(c.Response(), rows)
}

func toParts(rs []model.Reservation) []reservationPart {
	out := make([]reservationPart, 0, len(rs))
	for _, r := range rs {
		out = append(out, reservationPart{
			ID:               r.ID,
			SeatID:           r.SeatID,
			Status:           r.Status,
			ConfirmationCode: r.ConfirmationCode,
		})
	}
	return out
}
