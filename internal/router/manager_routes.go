package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/handler"
	"github.com/ekarslan/event-seat-reservation/internal/middleware"
	"github.com/ekarslan/event-seat-reservation/internal/model"
)

// RegisterManager registers MANAGER-scoped endpoints under /v1. All
// routes require a valid JWT and the MANAGER or ADMIN role. Ownership
// of individual events is checked inside the handlers and the
// allocation engine.
func RegisterManager(e *echo.Echo, m *handler.ManagerHandler, a *handler.AllowanceHandler, r *handler.ReservationAdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager, model.RoleAdmin),
	)

	// ---- Locations and seats ----
	g.POST("/locations", m.CreateLocation)
	g.GET("/locations", m.ListLocations)
	g.POST("/locations/:id/seats", m.GenerateSeats)
	g.GET("/locations/:id/seats", m.ListSeats)

	// ---- Events ----
	g.POST("/events", m.CreateEvent)
	g.GET("/events/mine", m.ListMyEvents)
	g.PUT("/events/:id", m.UpdateEvent)
	g.PATCH("/events/:id", m.UpdateEvent)
	g.DELETE("/events/:id", m.DeleteEvent)

	// ---- Allowances ----
	g.POST("/events/:id/allowances", a.Grant)

	// ---- Reservations ----
	g.POST("/events/:id/block", r.BlockSeats)
	g.POST("/reservations/release", r.ReleaseReservations)
	g.GET("/events/:id/reservations", r.ListEventReservations)
	g.GET("/events/:id/reservations/export", r.ExportEventReservations)
}
