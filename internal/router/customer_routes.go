package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/handler"
	"github.com/ekarslan/event-seat-reservation/internal/middleware"
	"github.com/ekarslan/event-seat-reservation/internal/model"
)

// RegisterCustomer registers end-user endpoints under /v1. All routes
// require a valid JWT and the USER role. Users reserve seats for
// themselves, inspect their remaining allowance and release their own
// holds.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, a *handler.AllowanceHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser),
	)

	g.POST("/events/:id/reservations", h.ReserveSeats)
	g.GET("/events/:id/allowance", a.Remaining)
	g.GET("/my-reservations", h.ListMyReservations)
	g.DELETE("/reservations/:id", h.ReleaseMyReservation)
}
