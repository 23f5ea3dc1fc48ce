package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/service"
)

// AllowanceHandler exposes the quota ledger to managers: granting and
// inspecting how many reservations a user may make for an event.
type AllowanceHandler struct {
	Alloc *service.AllocationService
}

func NewAllowanceHandler(alloc *service.AllocationService) *AllowanceHandler {
	return &AllowanceHandler{Alloc: alloc}
}

type grantAllowanceReq struct {
	UserID uint64 `json:"user_id"`
	Count  uint32 `json:"count"`
}

// Grant sets a user's quota for an event. Granting overwrites any
// previous count; a grant of zero revokes future reservations without
// touching existing ones.
func (h *AllowanceHandler) Grant(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req grantAllowanceReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Alloc.GrantAllowance(ctx, uid, getRole(c), req.UserID, eventID, req.Count); err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id": eventID,
		"user_id":  req.UserID,
		"count":    req.Count,
	})
}

// Remaining reports the caller's remaining quota for an event.
func (h *AllowanceHandler) Remaining(c echo.Context) error {
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

	count, err := h.Alloc.RemainingAllowance(ctx, uid, eventID)
	if err != nil {
		return writeAllocationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": eventID, "remaining": count})
}
