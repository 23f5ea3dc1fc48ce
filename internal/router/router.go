// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ekarslan/event-seat-reservation/internal/handler"
	"github.com/ekarslan/event-seat-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication and no
// handler state. Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login
// and refresh live under /v1/auth and need no session; /v1/me and
// /v1/auth/logout require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints. All
// are read-only and sit behind the response cache when one is
// configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/events", p.ListEvents)
	g.GET("/search/events", p.SearchEvents)
	g.GET("/events/:id/seats", p.SeatMap)
}
