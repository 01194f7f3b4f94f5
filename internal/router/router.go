package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework used for routing

    "github.com/iliyamo/library-seat-reservation/internal/handler"
    "github.com/iliyamo/library-seat-reservation/internal/middleware"
    "github.com/iliyamo/library-seat-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Used by load balancers and monitoring to verify the service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes and the /v1/me
// profile endpoint.  Unauthenticated operations live under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterSeats registers the reader-facing seat availability views.
// These are public: guests browse the seat map before logging in to
// reserve.
func RegisterSeats(e *echo.Echo, s *handler.SeatHandler) {
    e.GET("/v1/seats", s.ListStatuses)
    e.GET("/v1/seats/:id/availability", s.GetAvailability)
}

// RegisterReservations registers the reservation lifecycle endpoints.
// Every route requires a valid access token; readers and admins are
// both accepted, with ownership enforced in the service layer.  The
// optional rate limiter wraps the whole group.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleReader, model.RoleAdmin))
    if limiter != nil {
        g.Use(limiter)
    }

    g.POST("/reservations", r.Create)
    g.GET("/my-reservations", r.ListMine)
    g.POST("/reservations/:id/checkin", r.CheckIn)
    g.POST("/reservations/:id/finish", r.Finish)
    g.PATCH("/reservations/:id/cancel", r.Cancel)
    g.PATCH("/reservations/:id/adjust", r.Adjust)
    g.DELETE("/reservations/:id", r.Delete)
}

// RegisterAdmin registers the layout management endpoints under
// /v1/admin.  Only administrators pass the role check.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleAdmin))

    g.POST("/zones", a.CreateZone)
    g.GET("/zones", a.ListZones)
    g.PATCH("/zones/:id", a.UpdateZone)
    g.DELETE("/zones/:id", a.DeleteZone)

    g.POST("/zones/:id/seats", a.CreateSeat)
    g.GET("/zones/:id/seats", a.ListSeats)
    g.PATCH("/seats/:id", a.UpdateSeat)
    g.PATCH("/seats/:id/availability", a.SetSeatAvailability)
    g.DELETE("/seats/:id", a.DeleteSeat)
}
