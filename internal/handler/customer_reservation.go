package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/service"
)

// CustomerHandler is the end-user allocation surface: reserving seats,
// listing and releasing one's own holds.
type CustomerHandler struct {
	Alloc *service.AllocationService
}

func NewCustomerHandler(alloc *service.AllocationService) *CustomerHandler {
	return &CustomerHandler{Alloc: alloc}
}

// ReserveSeats creates RESERVED holds for the caller. The batch either
// lands whole or not at all; every seat costs one allowance unit.
func (h *CustomerHandler) ReserveSeats(c echo.Context) error {
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

	created, err := h.Alloc.Reserve(ctx, getRole(c), uid, eventID, req.SeatIDs)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"event_id":     eventID,
		"reservations": toParts(created),
	})
}

// ListMyReservations returns the caller's reservations, optionally
// scoped to one event via ?event_id=.
func (h *CustomerHandler) ListMyReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var eventID uint64
	if q := c.QueryParam("event_id"); q != "" {
		if eventID, err = pathIDValue(q); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event_id"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Alloc.UserReservations(ctx, uid, eventID)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": rows})
}

// ReleaseMyReservation frees one of the caller's own holds.
func (h *CustomerHandler) ReleaseMyReservation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	released, err := h.Alloc.Release(ctx, uid, getRole(c), []uint64{resID})
	if err != nil {
		return writeAllocationError(c, err)
	}
	if len(released) == 0 {
		// Already gone; releasing twice is not an error.
		return c.JSON(http.StatusOK, echo.Map{"released": []reservationPart{}})
	}
	return c.JSON(http.StatusOK, echo.Map{"released": toParts(released)})
}
