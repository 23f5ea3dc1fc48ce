package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/repository"
)

// ManagerHandler bundles repositories for master data managed by event
// managers: locations, their seats, and events.
type ManagerHandler struct {
	Locations *repository.LocationRepo
	Seats     *repository.SeatRepo
	Events    *repository.EventRepo
}

func NewManagerHandler(l *repository.LocationRepo, s *repository.SeatRepo, e *repository.EventRepo) *ManagerHandler {
	if l == nil || s == nil || e == nil {
		panic("nil repository passed to NewManagerHandler")
	}
	return &ManagerHandler{Locations: l, Seats: s, Events: e}
}

type createLocationReq struct {
	Name string `json:"name"`
}

// CreateLocation registers a new venue.
func (h *ManagerHandler) CreateLocation(c echo.Context) error {
	var req createLocationReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.Create(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, loc)
}

// ListLocations returns all venues.
func (h *ManagerHandler) ListLocations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locs, err := h.Locations.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": locs})
}

type generateSeatsReq struct {
	Rows        int `json:"rows"`
	SeatsPerRow int `json:"seats_per_row"`
}

// GenerateSeats bulk creates a location's seat grid: rows × seats per
// row, rows labelled A, B, C and seat numbers running across the whole
// venue.
func (h *ManagerHandler) GenerateSeats(c echo.Context) error {
	locID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}
	var req generateSeatsReq
	if err := c.Bind(&req); err != nil || req.Rows <= 0 || req.SeatsPerRow <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows and seats_per_row must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Locations.GetByID(ctx, locID); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Seats.BulkCreate(ctx, locID, req.Rows, req.SeatsPerRow); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"location_id": locID,
		"seats":       req.Rows * req.SeatsPerRow,
	})
}

// ListSeats returns a location's seats in seat number order.
func (h *ManagerHandler) ListSeats(c echo.Context) error {
	locID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Seats.ListByLocation(ctx, locID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}
