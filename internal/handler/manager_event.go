package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/model"
	"github.com/ekarslan/event-seat-reservation/internal/repository"
)

type createEventReq struct {
	LocationID      uint64    `json:"location_id"`
	Name            string    `json:"name"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	BookingStartsAt time.Time `json:"booking_starts_at"`
	BookingDeadline time.Time `json:"booking_deadline"`
}

// validate checks the request's ordering rules: the event starts before
// it ends, the booking window opens strictly before its deadline, and
// the deadline falls strictly before the event's end. It returns an
// empty string when the request is well formed.
func (req *createEventReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.LocationID == 0 {
		return "name and location_id required"
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return "starts_at must precede ends_at"
	}
	if !req.BookingStartsAt.Before(req.BookingDeadline) || !req.BookingDeadline.Before(req.EndsAt) {
		return "invalid booking window"
	}
	return ""
}

// CreateEvent creates an event owned by the calling manager. The
// booking window must open before it closes and close strictly before
// the event's end.
func (h *ManagerHandler) CreateEvent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Locations.GetByID(ctx, req.LocationID); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	ev, err := h.Events.Create(ctx, &model.Event{
		ManagerID:       uid,
		LocationID:      req.LocationID,
		Name:            req.Name,
		StartsAt:        req.StartsAt.UTC(),
		EndsAt:          req.EndsAt.UTC(),
		BookingStartsAt: req.BookingStartsAt.UTC(),
		BookingDeadline: req.BookingDeadline.UTC(),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, ev)
}

// UpdateEvent rewrites an event the caller owns. The new times go
// through the same window validation as creation.
func (h *ManagerHandler) UpdateEvent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
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
	if getRole(c) != model.RoleAdmin && ev.ManagerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if _, err := h.Locations.GetByID(ctx, req.LocationID); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	ev.LocationID = req.LocationID
	ev.Name = req.Name
	ev.StartsAt = req.StartsAt.UTC()
	ev.EndsAt = req.EndsAt.UTC()
	ev.BookingStartsAt = req.BookingStartsAt.UTC()
	ev.BookingDeadline = req.BookingDeadline.UTC()

	updated, err := h.Events.Update(ctx, ev)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// ListMyEvents returns the events owned by the calling manager.
func (h *ManagerHandler) ListMyEvents(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListByManager(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// DeleteEvent removes an event the caller owns. Reservations and
// allowances cascade away with it.
func (h *ManagerHandler) DeleteEvent(c echo.Context) error {
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

	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if getRole(c) != model.RoleAdmin && ev.ManagerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Events.Delete(ctx, eventID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}
