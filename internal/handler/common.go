// Package handler defines the HTTP handlers.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/repository"
	"github.com/ekarslan/event-seat-reservation/internal/service"
)

// getUserID extracts the user_id stored by JWTAuth. JSON decoding turns
// the numeric claim into float64, so several shapes are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the role claim stored by JWTAuth.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// pathIDValue parses a numeric identifier from a raw string, for query
// parameters.
func pathIDValue(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// allocationErrorBody maps allocation engine failures to an HTTP status
// and response body. Unknown errors become a generic 500 so internals
// never leak to clients.
func allocationErrorBody(err error) (int, echo.Map) {
	var conflict *service.SeatConflictError
	switch {
	case errors.As(err, &conflict):
		return http.StatusConflict, echo.Map{
			"error": "seat_unavailable",
			"seats": conflict.SeatIDs,
		}
	case errors.Is(err, repository.ErrSeatTaken):
		return http.StatusConflict, echo.Map{"error": "seat_unavailable"}
	case errors.Is(err, repository.ErrNoAllowance):
		return http.StatusConflict, echo.Map{"error": "quota_exceeded"}
	case errors.Is(err, service.ErrBookingClosed):
		return http.StatusConflict, echo.Map{"error": "booking_closed"}
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden, echo.Map{"error": "forbidden"}
	case errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrLocationNotFound),
		errors.Is(err, repository.ErrReservationNotFound):
		return http.StatusNotFound, echo.Map{"error": err.Error()}
	default:
		return http.StatusInternalServerError, echo.Map{"error": "internal error"}
	}
}

func writeAllocationError(c echo.Context, err error) error {
	status, body := allocationErrorBody(err)
	return c.JSON(status, body)
}
