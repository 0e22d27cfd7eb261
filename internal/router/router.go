// Package router assembles the Echo instance: global middleware, the public
// catalog routes, the authenticated customer routes and the admin surface.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Health       echo.HandlerFunc
	Auth         *handler.AuthHandler
	Reservations *handler.ReservationHandler
	Movies       *handler.MovieHandler
	Rooms        *handler.RoomHandler
	Showtimes    *handler.ShowtimeHandler
	Purchases    *handler.PurchaseHandler
	Promotions   *handler.PromotionHandler
}

// Middleware bundles the cross-cutting pieces built in main from config.
type Middleware struct {
	JWTSecret string
	RateLimit echo.MiddlewareFunc // token bucket, applied to mutating reservation routes
	Cache     echo.MiddlewareFunc // response cache, applied to public catalog reads
}

// New builds the Echo engine with all routes registered.
func New(h Handlers, mw Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	e.GET("/healthz", h.Health)

	v1 := e.Group("/v1")

	// Public: account entry points and the browsable catalog. Catalog reads
	// go through the response cache; seat grids stay uncached so clients
	// always see fresh statuses.
	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/refresh", h.Auth.Refresh)

	v1.GET("/movies", h.Movies.List, mw.Cache)
	v1.GET("/movies/:id", h.Movies.Get, mw.Cache)
	v1.GET("/showtimes", h.Showtimes.List, mw.Cache)
	v1.GET("/showtimes/:id/seats", h.Showtimes.Seats)
	v1.GET("/promotions", h.Promotions.List, mw.Cache)

	// Authenticated customer surface. The reserve and cancel routes carry
	// the rate limiter; they are the hot path during an on-sale rush.
	auth := v1.Group("", middleware.JWTAuth(mw.JWTSecret))
	auth.POST("/auth/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)

	auth.POST("/reservations", h.Reservations.Create, mw.RateLimit)
	auth.DELETE("/reservations/:id", h.Reservations.Cancel, mw.RateLimit)
	auth.GET("/my-reservations", h.Reservations.ListMine)
	auth.GET("/reservations/user/:userId", h.Reservations.ListByUser)

	auth.POST("/purchases", h.Purchases.Create, mw.RateLimit)
	auth.GET("/purchases", h.Purchases.ListMine)
	auth.GET("/purchases/:id", h.Purchases.Get)

	// Admin surface: catalog writes, room and showtime lifecycle, global
	// listings.
	admin := v1.Group("/admin", middleware.JWTAuth(mw.JWTSecret), middleware.RequireAdmin())
	admin.POST("/movies", h.Movies.Create)
	admin.PUT("/movies/:id", h.Movies.Update)
	admin.DELETE("/movies/:id", h.Movies.Delete)

	admin.POST("/rooms", h.Rooms.Create)
	admin.GET("/rooms", h.Rooms.List)
	admin.PUT("/rooms/:id", h.Rooms.Update)
	admin.DELETE("/rooms/:id", h.Rooms.Delete)
	admin.POST("/rooms/:id/seats", h.Rooms.CreateSeats)
	admin.GET("/rooms/:id/seats", h.Rooms.ListSeats)
	admin.PUT("/seats/:seatId/active", h.Rooms.SetSeatActive)

	admin.POST("/showtimes", h.Showtimes.Create)
	admin.DELETE("/showtimes/:id", h.Showtimes.Delete)
	admin.GET("/showtimes/:id/reservations", h.Reservations.ListByShowtime)

	admin.POST("/promotions", h.Promotions.Create)
	admin.PUT("/promotions/:id", h.Promotions.Update)
	admin.DELETE("/promotions/:id", h.Promotions.Delete)

	admin.GET("/purchases", h.Purchases.ListAll)

	return e
}
